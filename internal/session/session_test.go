package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"article-admin/internal/article"
	"article-admin/internal/draft"
	"article-admin/internal/edit"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Get(ctx context.Context, id string) (*article.Article, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*article.Article)
	return a, args.Error(1)
}

func (m *MockRecordStore) Create(ctx context.Context, f article.Fields) (*article.Article, error) {
	args := m.Called(ctx, f)
	a, _ := args.Get(0).(*article.Article)
	return a, args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, id string, p article.Patch) (*article.Article, error) {
	args := m.Called(ctx, id, p)
	a, _ := args.Get(0).(*article.Article)
	return a, args.Error(1)
}

type SessionSuite struct {
	suite.Suite

	ctx     context.Context
	records *MockRecordStore
	storage *draft.MemoryStorage
	drafts  *draft.Store
	logBuf  *bytes.Buffer
	clock   time.Time
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.records = &MockRecordStore{}
	s.storage = draft.NewMemoryStorage(0)
	s.logBuf = &bytes.Buffer{}
	s.drafts = draft.NewStore(s.storage, draft.Options{}, log.New(s.logBuf, "", 0))
	s.clock = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
}

func (s *SessionSuite) TearDownTest() {
	s.records.AssertExpectations(s.T())
}

func (s *SessionSuite) start(opts Options) *Session {
	opts.Logger = log.New(s.logBuf, "", 0)
	opts.Now = func() time.Time { return s.clock }
	sess, err := Start(s.ctx, s.records, s.drafts, opts)
	s.Require().NoError(err)
	return sess
}

func (s *SessionSuite) stored(id, title string) *article.Article {
	f := article.Empty()
	f.Title = title
	return &article.Article{ID: id, Fields: f}
}

func (s *SessionSuite) TestServerArticleWinsOverDraft() {
	local := article.Empty()
	local.Title = "local"
	s.Require().NoError(s.drafts.Save(s.ctx, "a1", local))

	sess := s.start(Options{Server: s.stored("a1", "server"), Autosave: true})

	s.Equal("server", sess.State().Title)
	s.Equal("a1", sess.DraftID())
	s.False(sess.IsNew())

	// hydration does not overwrite the draft
	got, ok, err := s.drafts.Load(s.ctx, "a1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("local", got.Title)
}

func (s *SessionSuite) TestResumesDraft() {
	local := article.Empty()
	local.Title = "resumed"
	s.Require().NoError(s.drafts.Save(s.ctx, "new-1", local))

	sess := s.start(Options{DraftID: "new-1"})
	s.Equal(local, sess.State())
	s.True(sess.IsNew())
}

func (s *SessionSuite) TestResumedDraftOfStoredArticleTargetsIt() {
	sess := s.start(Options{DraftID: "64b7f0000000000000000000"})
	s.False(sess.IsNew())
	s.Equal("64b7f0000000000000000000", sess.ArticleID())
}

func (s *SessionSuite) TestMissingDraftStartsEmpty() {
	sess := s.start(Options{DraftID: "new-missing"})
	s.Equal(article.Empty(), sess.State())
	s.True(sess.IsNew())

	bare := s.start(Options{})
	s.Equal(article.Empty(), bare.State())
	s.ErrorIs(bare.Flush(s.ctx), ErrNoDraft)
}

func (s *SessionSuite) TestMutationsAutosave() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})

	sess.SetTitle(s.ctx, "Bonjour")
	sess.AddTag(s.ctx, "news")
	s.Require().NoError(sess.UpdateVersion(s.ctx, article.Easy, func(v article.Version) (article.Version, error) {
		v.Vocabulary = edit.AddRow(v.Vocabulary)
		return v, nil
	}))

	got, ok, err := s.drafts.Load(s.ctx, "new-1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(sess.State(), got)
	s.Equal([]string{"news"}, got.Labels)
	s.Equal(1, got.EasyVersion.Vocabulary.Len())
}

func (s *SessionSuite) TestNoAutosaveUntilFlush() {
	sess := s.start(Options{DraftID: "new-1"})
	sess.SetTitle(s.ctx, "x")

	_, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.False(ok)

	s.Require().NoError(sess.Flush(s.ctx))
	got, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.True(ok)
	s.Equal("x", got.Title)
}

func (s *SessionSuite) TestFailedMutationLeavesState() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})
	before := sess.State()

	err := sess.RemoveTag(s.ctx, 3)
	s.ErrorIs(err, edit.ErrIndexOutOfRange)
	err = sess.UpdateVersion(s.ctx, article.Medium, func(v article.Version) (article.Version, error) {
		v.Content = "half applied"
		return v, errors.New("nope")
	})
	s.Error(err)

	s.Equal(before, sess.State())
	_, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.False(ok)
}

func (s *SessionSuite) TestStateIsASnapshot() {
	sess := s.start(Options{})
	sess.AddTag(s.ctx, "a")

	snap := sess.State()
	snap.Labels[0] = "mutated"
	s.Equal([]string{"a"}, sess.State().Labels)
}

func (s *SessionSuite) TestSaveFailureIsAWarning() {
	s.drafts = draft.NewStore(draft.NewMemoryStorage(8), draft.Options{}, log.New(s.logBuf, "", 0))
	var seen []StorageWarning
	sess := s.start(Options{
		DraftID:   "new-1",
		Autosave:  true,
		OnWarning: func(w StorageWarning) { seen = append(seen, w) },
	})

	sess.SetTitle(s.ctx, "still applied")

	s.Equal("still applied", sess.State().Title)
	s.Require().Len(seen, 1)
	s.Equal("save", seen[0].Op)
	s.ErrorIs(seen[0], draft.ErrQuotaExceeded)
	s.Equal(seen, sess.Warnings())
	s.Contains(s.logBuf.String(), "draft new-1: save failed")
}

func (s *SessionSuite) TestSubmitCreatesAndRemovesDraft() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})
	sess.SetTitle(s.ctx, "A")

	s.records.
		On("Create", mock.Anything, mock.MatchedBy(func(f article.Fields) bool {
			return f.Title == "A" && f.PublishDate != nil && f.PublishDate.Equal(s.clock)
		})).
		Return(s.stored("abc", "A"), nil).
		Once()

	saved, err := sess.Submit(s.ctx)
	s.Require().NoError(err)
	s.Equal("abc", saved.ID)

	_, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.False(ok)
	s.Equal("abc", sess.DraftID())
	s.Equal("abc", sess.ArticleID())
	s.False(sess.IsNew())
}

func (s *SessionSuite) TestSubmitKeepsDraftWhenAsked() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true, KeepDraftOnSubmit: true})
	sess.SetTitle(s.ctx, "A")

	s.records.On("Create", mock.Anything, mock.Anything).Return(s.stored("abc", "A"), nil).Once()

	_, err := sess.Submit(s.ctx)
	s.Require().NoError(err)

	_, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.True(ok)
	s.Equal("new-1", sess.DraftID())
	s.Equal("abc", sess.ArticleID())
}

func (s *SessionSuite) TestSubmitUpdatesExisting() {
	server := s.stored("abc", "old")
	d := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*3600))
	server.PublishDate = &d
	sess := s.start(Options{Server: server, Autosave: true})
	sess.SetTitle(s.ctx, "new")

	s.records.
		On("Update", mock.Anything, "abc", mock.MatchedBy(func(p article.Patch) bool {
			return *p.Title == "new" && p.Published == nil &&
				p.PublishDate.Location() == time.UTC && p.PublishDate.Equal(d)
		})).
		Return(s.stored("abc", "new"), nil).
		Once()

	_, err := sess.Submit(s.ctx)
	s.Require().NoError(err)

	_, ok, _ := s.drafts.Load(s.ctx, "abc")
	s.False(ok)
}

func (s *SessionSuite) TestSubmitRequiresTitle() {
	sess := s.start(Options{DraftID: "new-1"})
	sess.SetTitle(s.ctx, "   ")

	_, err := sess.Submit(s.ctx)
	s.ErrorIs(err, article.ErrValidation)
}

func (s *SessionSuite) TestSubmitFailureKeepsDraft() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})
	sess.SetTitle(s.ctx, "A")

	s.records.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()

	_, err := sess.Submit(s.ctx)
	s.Error(err)
	s.True(sess.IsNew())
	_, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.True(ok)
	s.Equal("new-1", sess.DraftID())
	s.Empty(sess.ArticleID())
}

func (s *SessionSuite) TestOpenFetchesArticle() {
	s.records.On("Get", mock.Anything, "abc").Return(s.stored("abc", "remote"), nil).Once()

	sess, err := Open(s.ctx, s.records, s.drafts, "abc", Options{Logger: log.New(s.logBuf, "", 0)})
	s.Require().NoError(err)
	s.Equal("remote", sess.State().Title)
	s.Equal("abc", sess.DraftID())
}

func (s *SessionSuite) TestRawInvalidNeverMutates() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})
	sess.AddTag(s.ctx, "keep")
	before := sess.State()

	err := sess.ApplyRaw(s.ctx, article.Easy, SectionGrammar, `[{"title": `)
	s.ErrorIs(err, edit.ErrInvalidRaw)
	s.Equal(before, sess.State())

	st, err := sess.Raw(article.Easy, SectionGrammar)
	s.Require().NoError(err)
	s.False(st.Valid)
	s.Equal(`[{"title": `, st.Text)
}

func (s *SessionSuite) TestRawMisspelledKeysNeverMutate() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})
	s.Require().NoError(sess.ApplyRaw(s.ctx, article.Easy, SectionVocabulary,
		`{"words":["chat"],"category":["noun"],"translations":{"japanese":["猫"]}}`))
	s.Require().NoError(sess.ApplyRaw(s.ctx, article.Easy, SectionGrammar,
		`[{"title":"T","explanation":"","examples":[{"sourceText":"a","targetText":"b"}]}]`))
	s.Require().NoError(sess.ApplyRaw(s.ctx, article.Easy, SectionQuestions,
		`[{"questionText":"Q","options":["a"],"correctAnswer":"a"}]`))
	before := sess.State()

	for sec, text := range map[Section]string{
		SectionVocabulary: `{"wrods":["chien"]}`,
		SectionGrammar:    `[{"title":"t","examples":[{"src":"x"}]}]`,
		SectionQuestions:  `[{"question":"typo","bogus":1}]`,
	} {
		err := sess.ApplyRaw(s.ctx, article.Easy, sec, text)
		s.ErrorIs(err, edit.ErrInvalidRaw, sec)

		st, err := sess.Raw(article.Easy, sec)
		s.Require().NoError(err)
		s.False(st.Valid)
		s.Equal(text, st.Text)
	}
	s.Equal(before, sess.State())

	got, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.True(ok)
	s.Equal([]string{"chat"}, got.EasyVersion.Vocabulary.Words)
}

func (s *SessionSuite) TestRawValidReplaces() {
	sess := s.start(Options{DraftID: "new-1", Autosave: true})

	err := sess.ApplyRaw(s.ctx, article.Medium, SectionQuestions,
		`[{"questionText":"Q","options":["a","b"],"correctAnswer":"a"}]`)
	s.Require().NoError(err)
	s.Equal([]article.QuizQuestion{{QuestionText: "Q", Options: []string{"a", "b"}, CorrectAnswer: "a"}},
		sess.State().MediumVersion.Questions)

	s.Require().NoError(sess.ApplyRaw(s.ctx, "", SectionLabels, `[" x ", "x", "y"]`))
	s.Equal([]string{"x", "y"}, sess.State().Labels)

	st, err := sess.Raw(article.Medium, SectionQuestions)
	s.Require().NoError(err)
	s.True(st.Valid)
	s.True(strings.HasPrefix(st.Text, "[\n  {"))

	got, ok, _ := s.drafts.Load(s.ctx, "new-1")
	s.True(ok)
	s.Equal(sess.State(), got)
}

func (s *SessionSuite) TestRawRejectsUnknownSection() {
	sess := s.start(Options{})
	s.ErrorIs(sess.ApplyRaw(s.ctx, article.Easy, "images", "[]"), article.ErrValidation)
	s.ErrorIs(sess.ApplyRaw(s.ctx, "hard", SectionVocabulary, "{}"), article.ErrValidation)

	_, err := sess.Raw(article.Easy, "images")
	s.ErrorIs(err, article.ErrValidation)
	_, err = sess.Raw("hard", SectionVocabulary)
	s.ErrorIs(err, article.ErrValidation)
	_, err = sess.Raw("", SectionLabels)
	s.NoError(err)
}
