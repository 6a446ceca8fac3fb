package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidyasagar/wikisurf/internal/analytics"
	"github.com/vidyasagar/wikisurf/internal/config"
	"github.com/vidyasagar/wikisurf/internal/events"
	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/pagecache"
	"github.com/vidyasagar/wikisurf/internal/storage"
	"github.com/vidyasagar/wikisurf/internal/wiki"
	"github.com/vidyasagar/wikisurf/internal/zero"
)

// Searcher finds titles. *wiki.Client implements it.
type Searcher interface {
	Search(ctx context.Context, site, query string, limit int) ([]wiki.SearchResult, error)
	Random(ctx context.Context, site string) (page.Title, error)
}

// Env is what the reader needs from outside the UI. Open builds one wired
// to Wikipedia and the local database; tests assemble their own.
type Env struct {
	Config   *config.Config
	Log      *slog.Logger
	Fetcher  nav.Fetcher
	Search   Searcher
	Cache    *pagecache.Cache[nav.Document]
	History  *storage.HistoryStore
	Saved    *storage.SavedPageStore
	Sessions *storage.SessionStore
	Funnel   *analytics.SessionFunnel
	Zero     *zero.Tracker
	Bus      *events.Bus
	Prefetch *wiki.Prefetcher // optional

	// Run starts page fetches. Nil runs each on its own goroutine.
	Run func(func())

	db *storage.DB
}

// Open opens the database in the configured data directory and wires the
// wiki client, page cache and session bookkeeping around it.
func Open(cfg *config.Config, log *slog.Logger) (*Env, error) {
	db, err := storage.OpenDB(cfg.DataPath())
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	tracker := zero.NewTracker(bus.Zero.Publish)
	saved := storage.NewSavedPageStore(db)

	client := wiki.NewClient(
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithScheme(cfg.APIScheme),
		wiki.WithSaved(saved),
		wiki.WithHeaderListener(tracker),
		wiki.WithLogger(log),
	)

	cache := pagecache.New[nav.Document](cfg.CacheCapacity,
		pagecache.WithEvictHook(func(k page.Key, cost int64) {
			log.Debug("evicted page", "key", k.String(), "cost", cost)
		}),
	)

	return &Env{
		Config:   cfg,
		Log:      log,
		Fetcher:  client,
		Search:   client,
		Cache:    cache,
		History:  storage.NewHistoryStore(db, log),
		Saved:    saved,
		Sessions: storage.NewSessionStore(db),
		Funnel:   analytics.NewSessionFunnel(),
		Zero:     tracker,
		Bus:      bus,
		Prefetch: wiki.NewPrefetcher(client, cache, cfg.PrefetchLinks, log),
		db:       db,
	}, nil
}

// Close stops prefetching, writes the session funnel and closes the
// database.
func (e *Env) Close(ctx context.Context) error {
	if e.Prefetch != nil {
		e.Prefetch.Stop()
	}
	if e.History != nil {
		e.History.Close()
	}
	var errs []error
	if e.Funnel != nil && e.Sessions != nil {
		if err := e.Funnel.Persist(ctx, e.Sessions); err != nil {
			errs = append(errs, err)
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}
