package event

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"article-admin/internal/article"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type ServiceSuite struct {
	suite.Suite

	publisher *MockPublisher
	logBuf    *bytes.Buffer
	svc       *Service
	oid       primitive.ObjectID
	clock     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.publisher = &MockPublisher{}
	s.logBuf = &bytes.Buffer{}
	s.svc = NewService(nil, s.publisher, log.New(s.logBuf, "", 0))
	s.clock = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.clock }
	s.oid = primitive.NewObjectID()
}

func (s *ServiceSuite) TearDownTest() {
	s.publisher.AssertExpectations(s.T())
}

// decode builds a changeEvent the way the driver would from the wire.
func (s *ServiceSuite) decode(doc bson.M) changeEvent {
	raw, err := bson.Marshal(doc)
	s.Require().NoError(err)
	var ev changeEvent
	s.Require().NoError(bson.Unmarshal(raw, &ev))
	return ev
}

func (s *ServiceSuite) TestInsertPublishesCreatedWithArticle() {
	ev := s.decode(bson.M{
		"operationType": "insert",
		"documentKey":   bson.M{"_id": s.oid},
		"fullDocument": bson.M{
			"_id":       s.oid,
			"title":     "Sample",
			"published": false,
			"labels":    bson.A{"news"},
		},
	})

	s.publisher.
		On("Publish", mock.Anything, mock.MatchedBy(func(m Message) bool {
			return m.Event == Created &&
				m.ArticleID == s.oid.Hex() &&
				m.Timestamp.Equal(s.clock) &&
				m.Article != nil && m.Article.ID == s.oid.Hex() && m.Article.Title == "Sample"
		})).
		Return(nil).
		Once()

	s.svc.handle(context.Background(), ev)
	s.Contains(s.logBuf.String(), "published article.created for article "+s.oid.Hex())
}

func (s *ServiceSuite) TestUpdateWithoutDocumentStillPublishes() {
	ev := s.decode(bson.M{
		"operationType": "update",
		"documentKey":   bson.M{"_id": s.oid},
		"fullDocument":  nil,
	})

	s.publisher.
		On("Publish", mock.Anything, mock.MatchedBy(func(m Message) bool {
			return m.Event == Updated && m.Article == nil
		})).
		Return(nil).
		Once()

	s.svc.handle(context.Background(), ev)
}

func (s *ServiceSuite) TestDeletePublishesID() {
	ev := s.decode(bson.M{
		"operationType": "delete",
		"documentKey":   bson.M{"_id": s.oid},
	})

	s.publisher.
		On("Publish", mock.Anything, Message{Event: Deleted, Timestamp: s.clock, ArticleID: s.oid.Hex()}).
		Return(nil).
		Once()

	s.svc.handle(context.Background(), ev)
}

func (s *ServiceSuite) TestSkipsUnknownOperations() {
	s.svc.handle(context.Background(), s.decode(bson.M{
		"operationType": "drop",
		"documentKey":   bson.M{"_id": s.oid},
	}))
	s.svc.handle(context.Background(), s.decode(bson.M{"operationType": "insert"}))

	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
	s.Contains(s.logBuf.String(), "skip drop event")
}

func (s *ServiceSuite) TestPublishFailureIsLogged() {
	ev := s.decode(bson.M{
		"operationType": "delete",
		"documentKey":   bson.M{"_id": s.oid},
	})
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	s.svc.handle(context.Background(), ev)
	s.Contains(s.logBuf.String(), "failed publishing article.deleted")
}

func (s *ServiceSuite) TestFullDocumentMigratesLegacyShape() {
	ev := s.decode(bson.M{
		"operationType": "replace",
		"documentKey":   bson.M{"_id": s.oid},
		"fullDocument": bson.M{
			"_id":   s.oid,
			"title": "Legacy",
			"easyVersion": bson.M{
				"vocabulary": bson.A{bson.M{"word": "chat", "translation": "猫", "category": "noun"}},
			},
		},
	})

	msg, ok := s.svc.toMessage(ev)
	s.Require().True(ok)
	s.Require().NotNil(msg.Article)
	s.Equal([]string{"chat"}, msg.Article.EasyVersion.Vocabulary.Words)
	s.Equal([]string{"猫"}, msg.Article.EasyVersion.Vocabulary.Translations[article.LegacyLanguage])
}
