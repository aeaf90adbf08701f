package article

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "articles"

type Repository interface {
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (*Article, error)
	Create(ctx context.Context, f Fields) (*Article, error)
	Update(ctx context.Context, id string, p Patch) (*Article, error)
	Delete(ctx context.Context, id string) (*Article, error)
	SetPublished(ctx context.Context, id string, published bool) (*Article, error)
}

type mongoRepository struct {
	col    *mongo.Collection
	logger *log.Logger
	now    func() time.Time
}

// document is the stored form: the article plus its ObjectID.
type document struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Article `bson:",inline"`
}

func (d document) article() *Article {
	a := d.Article
	a.ID = d.ID.Hex()
	a.Fields = Normalize(a.Fields)
	return &a
}

func NewMongoArticleRepository(db *mongo.Database, logger *log.Logger) (Repository, error) {
	col := db.Collection(CollectionName)

	repo := &mongoRepository{
		col:    col,
		logger: logger,
		now:    time.Now,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes backs the list ordering (newest publishDate first) and label lookups.
func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "publishDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "labels", Value: 1}},
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)

	if err != nil && r.logger != nil {
		r.logger.Printf("failed to create indexes: %v", err)
	}
	return err
}

// timestamp is truncated to what a BSON datetime can hold so that a value
// returned from a write equals the one read back later.
func (r *mongoRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func storedDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := t.UTC().Truncate(time.Millisecond)
	return &out
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "publishDate": 1, "published": 1}).
		SetSort(bson.D{{Key: "publishDate", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Summary{}
	for cur.Next(ctx) {
		var row struct {
			ID      primitive.ObjectID `bson:"_id"`
			Summary `bson:",inline"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		s := row.Summary
		s.ID = row.ID.Hex()
		out = append(out, s)
	}
	return out, cur.Err()
}

func (r *mongoRepository) Get(ctx context.Context, id string) (*Article, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc document
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.article(), nil
}

func (r *mongoRepository) Create(ctx context.Context, f Fields) (*Article, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	f = Normalize(f)
	f.PublishDate = storedDate(f.PublishDate)

	now := r.timestamp()
	doc := document{
		Article: Article{
			Fields:    f,
			Published: false,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid

	if r.logger != nil {
		r.logger.Printf("created article %s", oid.Hex())
	}
	return doc.article(), nil
}

// Update sets only the attributes present in p. Concurrent updates are
// applied in arrival order; the last one wins.
func (r *mongoRepository) Update(ctx context.Context, id string, p Patch) (*Article, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.SourceURL != nil {
		set["sourceUrl"] = *p.SourceURL
	}
	if p.ImageURL != nil {
		set["imageUrl"] = *p.ImageURL
	}
	if p.PublishDate != nil {
		set["publishDate"] = storedDate(p.PublishDate)
	}
	if p.Published != nil {
		set["published"] = *p.Published
	}
	if p.Labels != nil {
		set["labels"] = NormalizeLabels(*p.Labels)
	}
	if p.EasyVersion != nil {
		set["easyVersion"] = NormalizeVersion(*p.EasyVersion)
	}
	if p.MediumVersion != nil {
		set["mediumVersion"] = NormalizeVersion(*p.MediumVersion)
	}
	set["updatedAt"] = r.timestamp()

	if r.logger != nil {
		r.logger.Printf("updating article %s (%d fields)", id, len(set)-1)
	}
	return r.findOneAndUpdate(ctx, oid, set)
}

func (r *mongoRepository) SetPublished(ctx context.Context, id string, published bool) (*Article, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Printf("setting article %s published=%t", id, published)
	}
	return r.findOneAndUpdate(ctx, oid, bson.M{
		"published": published,
		"updatedAt": r.timestamp(),
	})
}

func (r *mongoRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, set bson.M) (*Article, error) {
	var doc document
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.article(), nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) (*Article, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc document
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Printf("deleted article %s", id)
	}
	return doc.article(), nil
}

// FromBSON decodes a stored article document, e.g. a change stream's full document.
func FromBSON(raw bson.Raw) (*Article, error) {
	var doc document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.article(), nil
}
