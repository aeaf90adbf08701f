package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"article-admin/internal/article"

	"github.com/google/uuid"
)

const (
	// KeyPrefix namespaces drafts inside a shared storage scope.
	KeyPrefix = "draft-"
	// NewPrefix marks drafts of articles that do not exist on the server yet.
	NewPrefix = "new-"

	DefaultMaxDrafts = 50
	DefaultMaxAge    = 30 * 24 * time.Hour
)

// Entry is one stored draft: the form snapshot plus the time it was saved.
// Payloads written before SavedAt existed decode with a zero SavedAt.
type Entry struct {
	ID      string    `json:"-"`
	SavedAt time.Time `json:"savedAt"`
	article.Fields
}

type Options struct {
	MaxDrafts int           // 0 disables the capacity bound
	MaxAge    time.Duration // 0 disables expiry
}

func DefaultOptions() Options {
	return Options{MaxDrafts: DefaultMaxDrafts, MaxAge: DefaultMaxAge}
}

type Store struct {
	storage Storage
	opts    Options
	logger  *log.Logger
	now     func() time.Time
}

func NewStore(storage Storage, opts Options, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		storage: storage,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

func NewID() string {
	return NewPrefix + uuid.NewString()
}

// IsNew reports whether id belongs to an article that was never saved remotely.
func IsNew(id string) bool {
	return strings.HasPrefix(id, NewPrefix)
}

// Save overwrites the draft unconditionally, then evicts the least recently
// saved other drafts beyond the capacity bound.
func (s *Store) Save(ctx context.Context, id string, f article.Fields) error {
	if id == "" {
		return errors.New("draft id is required")
	}

	data, err := json.Marshal(Entry{SavedAt: s.now().UTC(), Fields: f})
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", id, err)
	}
	if err := s.storage.Set(ctx, KeyPrefix+id, string(data)); err != nil {
		return fmt.Errorf("save draft %s: %w", id, err)
	}

	if s.opts.MaxDrafts > 0 {
		if _, err := s.evictOverCapacity(ctx, id); err != nil {
			s.logger.Printf("drafts: capacity eviction failed: %v", err)
		}
	}
	return nil
}

// Load returns the draft, or ok=false when it is absent, unreadable or expired.
// Expired drafts are removed on the way.
func (s *Store) Load(ctx context.Context, id string) (article.Fields, bool, error) {
	raw, ok, err := s.storage.Get(ctx, KeyPrefix+id)
	if err != nil {
		return article.Fields{}, false, fmt.Errorf("load draft %s: %w", id, err)
	}
	if !ok {
		return article.Fields{}, false, nil
	}

	e, err := decodeEntry(id, raw)
	if err != nil {
		s.logger.Printf("drafts: ignoring corrupted draft %s: %v", id, err)
		return article.Fields{}, false, nil
	}
	if s.expired(e) {
		s.logger.Printf("drafts: draft %s expired (saved %s)", id, e.SavedAt.Format(time.RFC3339))
		if err := s.storage.Remove(ctx, KeyPrefix+id); err != nil {
			s.logger.Printf("drafts: failed to remove expired draft %s: %v", id, err)
		}
		return article.Fields{}, false, nil
	}
	return article.Normalize(e.Fields), true, nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.storage.Remove(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("remove draft %s: %w", id, err)
	}
	return nil
}

// ListAll returns every readable, unexpired draft, most recently saved first.
func (s *Store) ListAll(ctx context.Context) ([]Entry, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	out := entries[:0]
	for _, e := range entries {
		if s.expired(e) {
			continue
		}
		e.Fields = article.Normalize(e.Fields)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Prune removes expired drafts and then the oldest drafts beyond capacity.
// It returns how many drafts were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !s.expired(e) {
			continue
		}
		if err := s.storage.Remove(ctx, KeyPrefix+e.ID); err != nil {
			return removed, err
		}
		removed++
	}

	if s.opts.MaxDrafts > 0 {
		n, err := s.evictOverCapacity(ctx, "")
		removed += n
		if err != nil {
			return removed, err
		}
	}

	if removed > 0 {
		s.logger.Printf("drafts: pruned %d drafts", removed)
	}
	return removed, nil
}

func (s *Store) evictOverCapacity(ctx context.Context, keep string) (int, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	excess := len(entries) - s.opts.MaxDrafts
	if excess <= 0 {
		return 0, nil
	}

	// oldest first; drafts without a timestamp count as oldest
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SavedAt.Before(entries[j].SavedAt)
	})

	removed := 0
	for _, e := range entries {
		if removed == excess {
			break
		}
		if e.ID == keep {
			continue
		}
		if err := s.storage.Remove(ctx, KeyPrefix+e.ID); err != nil {
			return removed, err
		}
		s.logger.Printf("drafts: evicted draft %s (capacity %d)", e.ID, s.opts.MaxDrafts)
		removed++
	}
	return removed, nil
}

func (s *Store) expired(e Entry) bool {
	if s.opts.MaxAge <= 0 || e.SavedAt.IsZero() {
		return false
	}
	return s.now().Sub(e.SavedAt) > s.opts.MaxAge
}

func (s *Store) scan(ctx context.Context) ([]Entry, error) {
	keys, err := s.storage.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	var out []Entry
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, KeyPrefix)
		if !ok {
			continue
		}
		raw, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read draft %s: %w", id, err)
		}
		if !ok {
			continue
		}
		e, err := decodeEntry(id, raw)
		if err != nil {
			s.logger.Printf("drafts: skipping corrupted draft %s: %v", id, err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeEntry(id, raw string) (Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, err
	}
	e.ID = id
	return e, nil
}
