package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"article-admin/internal/article"
	"article-admin/internal/client"
	"article-admin/internal/config"
	"article-admin/internal/db"
	"article-admin/internal/draft"
	"article-admin/internal/ingest"
	"article-admin/internal/session"

	"github.com/spf13/cobra"
)

// redisNamespace scopes draft keys when several tools share one Redis.
const redisNamespace = "articlectl:"

// app holds what every command needs. Fields that are already set are kept,
// which lets tests inject in-memory collaborators.
type app struct {
	cfg      config.CLIConfig
	logger   *log.Logger
	api      *client.Client
	drafts   *draft.Store
	importer ingest.SourceClient
	closers  []func() error
}

func (a *app) init(ctx context.Context) error {
	if a.logger == nil {
		a.logger = log.Default()
	}
	if a.api != nil && a.drafts != nil && a.importer != nil {
		return nil
	}

	cfg, err := config.CLIFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	httpClient := &http.Client{Timeout: cfg.Timeout}

	if a.api == nil {
		a.api = client.New(cfg.APIURL, httpClient)
	}
	if a.importer == nil {
		a.importer = ingest.NewSourceClient(httpClient)
	}
	if a.drafts == nil {
		storage, err := a.openStorage(ctx)
		if err != nil {
			return fmt.Errorf("opening draft storage: %w", err)
		}
		a.drafts = draft.NewStore(storage, draft.Options{
			MaxDrafts: cfg.DraftMax,
			MaxAge:    cfg.DraftMaxAge,
		}, a.logger)
	}
	return nil
}

func (a *app) openStorage(ctx context.Context) (draft.Storage, error) {
	switch a.cfg.DraftBackend {
	case config.BackendRedis:
		rc, err := db.ConnectRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		return draft.NewRedisStorage(rc, redisNamespace), nil
	case config.BackendMemory:
		return draft.NewMemoryStorage(0), nil
	default:
		conn, err := db.OpenSQLite(a.cfg.DraftPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		return draft.NewSQLiteStorage(ctx, conn)
	}
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resume starts an autosaving session on an existing draft.
func (a *app) resume(cmd *cobra.Command, id string) (*session.Session, error) {
	if _, ok, err := a.drafts.Load(cmd.Context(), id); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("no draft %q", id)
	}
	return session.Start(cmd.Context(), a.api, a.drafts, a.sessionOptions(cmd, id))
}

func (a *app) sessionOptions(cmd *cobra.Command, id string) session.Options {
	return session.Options{
		DraftID:  id,
		Autosave: true,
		Logger:   log.New(io.Discard, "", 0),
		OnWarning: func(w session.StorageWarning) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
		},
	}
}

func parseLevel(s string) (article.Level, error) {
	l := article.Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown version %q (want %s or %s)", s, article.Easy, article.Medium)
	}
	return l, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q (want RFC3339 or YYYY-MM-DD)", s)
}

// readInput reads a file argument; "-" means stdin.
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}
