package event

import (
	"context"
	"log"
	"time"

	"article-admin/internal/article"
	"article-admin/internal/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Created = "article.created"
	Updated = "article.updated"
	Deleted = "article.deleted"
)

type Message struct {
	Event     string           `json:"event"`
	Timestamp time.Time        `json:"timestamp"`
	ArticleID string           `json:"articleId"`
	Article   *article.Article `json:"article,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// changeEvent is the part of a change stream event we read.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.RawValue `bson:"fullDocument"`
}

type Service struct {
	col       *mongo.Collection
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewService(col *mongo.Collection, publisher Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		col:       col,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run watches the articles collection until ctx is done. Change streams need a
// replica set; on a standalone server Run logs the error and returns.
func (s *Service) Run(ctx context.Context) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}}},
		}}},
	}
	stream, err := s.col.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		s.logger.Printf("events: failed to open change stream: %v", err)
		return
	}
	defer stream.Close(ctx)

	s.logger.Println("events: watching MongoDB change stream...")

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			s.logger.Printf("events: failed decoding change event: %v", err)
			continue
		}
		s.handle(ctx, ev)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.Printf("events: change stream closed with error: %v", err)
	} else {
		s.logger.Println("events: change stream stopped")
	}
}

func (s *Service) handle(ctx context.Context, ev changeEvent) {
	msg, ok := s.toMessage(ev)
	if !ok {
		s.logger.Printf("events: skip %s event for %s", ev.OperationType, ev.DocumentKey.ID.Hex())
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		metrics.RecordEvent(msg.Event, "error")
		s.logger.Printf("events: failed publishing %s for article %s: %v", msg.Event, msg.ArticleID, err)
		return
	}

	metrics.RecordEvent(msg.Event, "ok")
	s.logger.Printf("events: published %s for article %s", msg.Event, msg.ArticleID)
}

func (s *Service) toMessage(ev changeEvent) (Message, bool) {
	if ev.DocumentKey.ID.IsZero() {
		return Message{}, false
	}

	msg := Message{
		Timestamp: s.now().UTC(),
		ArticleID: ev.DocumentKey.ID.Hex(),
	}
	switch ev.OperationType {
	case "insert":
		msg.Event = Created
	case "update", "replace":
		msg.Event = Updated
	case "delete":
		msg.Event = Deleted
		return msg, true
	default:
		return Message{}, false
	}

	// null when the document was deleted before the update lookup ran
	if ev.FullDocument.Type == bsontype.EmbeddedDocument {
		a, err := article.FromBSON(ev.FullDocument.Document())
		if err != nil {
			s.logger.Printf("events: failed decoding article %s: %v", msg.ArticleID, err)
		} else {
			msg.Article = a
		}
	}
	return msg, true
}
