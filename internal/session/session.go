// Package session reconciles one in-progress article edit with its local
// draft and the article store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"article-admin/internal/article"
	"article-admin/internal/draft"
	"article-admin/internal/edit"
)

type RecordStore interface {
	Get(ctx context.Context, id string) (*article.Article, error)
	Create(ctx context.Context, f article.Fields) (*article.Article, error)
	Update(ctx context.Context, id string, p article.Patch) (*article.Article, error)
}

type DraftStore interface {
	Load(ctx context.Context, id string) (article.Fields, bool, error)
	Save(ctx context.Context, id string, f article.Fields) error
	Remove(ctx context.Context, id string) error
}

var ErrNoDraft = errors.New("session has no draft id")

// StorageWarning reports a local draft operation that failed without failing
// the edit that caused it.
type StorageWarning struct {
	DraftID string
	Op      string
	Err     error
}

func (w StorageWarning) Error() string {
	return fmt.Sprintf("draft %s: %s failed: %v", w.DraftID, w.Op, w.Err)
}

func (w StorageWarning) Unwrap() error {
	return w.Err
}

type Options struct {
	// DraftID keys the local draft. Empty disables autosave.
	DraftID string
	// Server is the stored article being edited. When set it wins over any
	// local draft.
	Server            *article.Article
	Autosave          bool
	KeepDraftOnSubmit bool
	OnWarning         func(StorageWarning)
	Logger            *log.Logger
	Now               func() time.Time
}

type Session struct {
	records RecordStore
	drafts  DraftStore
	opts    Options
	logger  *log.Logger
	now     func() time.Time

	draftID   string
	articleID string
	state     article.Fields
	raw       map[rawKey]RawState
	warnings  []StorageWarning
}

// Start hydrates a session. It never writes the draft; the first save happens
// on the first successful mutation.
func Start(ctx context.Context, records RecordStore, drafts DraftStore, opts Options) (*Session, error) {
	s := &Session{
		records: records,
		drafts:  drafts,
		opts:    opts,
		logger:  opts.Logger,
		now:     opts.Now,
		draftID: opts.DraftID,
		raw:     map[rawKey]RawState{},
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	switch {
	case opts.Server != nil:
		s.articleID = opts.Server.ID
		s.state = article.Normalize(opts.Server.Fields)
		if s.draftID == "" {
			s.draftID = opts.Server.ID
		}
	case opts.DraftID != "":
		f, ok, err := drafts.Load(ctx, opts.DraftID)
		if err != nil {
			return nil, err
		}
		if ok {
			s.state = f
		} else {
			s.state = article.Empty()
		}
		// drafts of stored articles are keyed by the article id
		if !draft.IsNew(opts.DraftID) {
			s.articleID = opts.DraftID
		}
	default:
		s.state = article.Empty()
	}

	return s, nil
}

// Open fetches the stored article and starts a session on it.
func Open(ctx context.Context, records RecordStore, drafts DraftStore, id string, opts Options) (*Session, error) {
	a, err := records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	opts.Server = a
	if opts.DraftID == "" {
		opts.DraftID = a.ID
	}
	return Start(ctx, records, drafts, opts)
}

func (s *Session) State() article.Fields {
	return s.state.Clone()
}

func (s *Session) DraftID() string {
	return s.draftID
}

// ArticleID is empty until the article exists in the store.
func (s *Session) ArticleID() string {
	return s.articleID
}

func (s *Session) IsNew() bool {
	return s.articleID == ""
}

func (s *Session) Warnings() []StorageWarning {
	return append([]StorageWarning(nil), s.warnings...)
}

// Apply runs fn on a copy of the state and commits the result. When fn fails
// the state is left as it was.
func (s *Session) Apply(ctx context.Context, fn func(article.Fields) (article.Fields, error)) error {
	next, err := fn(s.state.Clone())
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	return nil
}

func (s *Session) UpdateVersion(ctx context.Context, l article.Level, fn func(article.Version) (article.Version, error)) error {
	if !l.Valid() {
		return &article.ValidationError{Field: "version", Reason: fmt.Sprintf("has unknown level %q", l)}
	}
	return s.Apply(ctx, func(f article.Fields) (article.Fields, error) {
		v, err := fn(f.Version(l))
		if err != nil {
			return f, err
		}
		return f.WithVersion(l, v), nil
	})
}

func (s *Session) SetTitle(ctx context.Context, title string) {
	s.set(ctx, func(f *article.Fields) { f.Title = title })
}

func (s *Session) SetSourceURL(ctx context.Context, url string) {
	s.set(ctx, func(f *article.Fields) { f.SourceURL = url })
}

func (s *Session) SetImageURL(ctx context.Context, url string) {
	s.set(ctx, func(f *article.Fields) { f.ImageURL = url })
}

// SetPublishDate sets or, with nil, clears the publish date.
func (s *Session) SetPublishDate(ctx context.Context, t *time.Time) {
	s.set(ctx, func(f *article.Fields) {
		if t == nil {
			f.PublishDate = nil
			return
		}
		d := *t
		f.PublishDate = &d
	})
}

func (s *Session) AddTag(ctx context.Context, tag string) {
	s.set(ctx, func(f *article.Fields) { f.Labels = edit.AddTag(f.Labels, tag) })
}

func (s *Session) RemoveTag(ctx context.Context, i int) error {
	return s.Apply(ctx, func(f article.Fields) (article.Fields, error) {
		labels, err := edit.RemoveTag(f.Labels, i)
		f.Labels = labels
		return f, err
	})
}

func (s *Session) SetContent(ctx context.Context, l article.Level, html string) error {
	return s.UpdateVersion(ctx, l, func(v article.Version) (article.Version, error) {
		return edit.SetContent(v, html), nil
	})
}

func (s *Session) SetAudioURL(ctx context.Context, l article.Level, url string) error {
	return s.UpdateVersion(ctx, l, func(v article.Version) (article.Version, error) {
		v.AudioURL = url
		return v, nil
	})
}

func (s *Session) set(ctx context.Context, fn func(*article.Fields)) {
	next := s.state.Clone()
	fn(&next)
	s.commit(ctx, next)
}

func (s *Session) commit(ctx context.Context, next article.Fields) {
	s.state = next
	if s.opts.Autosave && s.draftID != "" {
		_ = s.save(ctx)
	}
}

// Flush writes the current state to the draft regardless of autosave.
func (s *Session) Flush(ctx context.Context) error {
	if s.draftID == "" {
		return ErrNoDraft
	}
	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if err := s.drafts.Save(ctx, s.draftID, s.state); err != nil {
		s.warn(StorageWarning{DraftID: s.draftID, Op: "save", Err: err})
		return err
	}
	return nil
}

func (s *Session) warn(w StorageWarning) {
	s.warnings = append(s.warnings, w)
	s.logger.Printf("session: %v", w)
	if s.opts.OnWarning != nil {
		s.opts.OnWarning(w)
	}
}

// Submit stores the edit: create for a new article, update otherwise. The
// publish date defaults to now. On success the local draft is removed unless
// the session keeps drafts, and the session continues on the stored article.
func (s *Session) Submit(ctx context.Context) (*article.Article, error) {
	if err := article.Validate(s.state); err != nil {
		return nil, err
	}

	f := s.state.Clone()
	date := s.now().UTC()
	if f.PublishDate != nil {
		date = f.PublishDate.UTC()
	}
	f.PublishDate = &date

	var (
		saved *article.Article
		err   error
	)
	if s.IsNew() {
		saved, err = s.records.Create(ctx, f)
	} else {
		saved, err = s.records.Update(ctx, s.articleID, article.PatchFrom(f))
	}
	if err != nil {
		return nil, err
	}

	// a kept draft stays under its key; otherwise later saves follow the article
	if s.draftID != "" && !s.opts.KeepDraftOnSubmit {
		if err := s.drafts.Remove(ctx, s.draftID); err != nil {
			s.warn(StorageWarning{DraftID: s.draftID, Op: "remove", Err: err})
		}
		s.draftID = saved.ID
	}
	s.articleID = saved.ID
	s.state = article.Normalize(saved.Fields)
	s.raw = map[rawKey]RawState{}

	return saved, nil
}
