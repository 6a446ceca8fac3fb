package wiki

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
)

// prefetchConcurrency bounds simultaneous prefetch requests.
const prefetchConcurrency = 2

// PrefetchCache is the part of the page cache the prefetcher fills.
type PrefetchCache interface {
	Contains(key page.Key) bool
	Put(key page.Key, doc nav.Document, cost int64)
}

// Prefetcher warms the page cache with the first links of the page being
// read, so following them is instant.
type Prefetcher struct {
	client *Client
	cache  PrefetchCache
	limit  int
	log    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPrefetcher returns a prefetcher that fetches up to limit links per
// page. A limit of zero disables it.
func NewPrefetcher(c *Client, cache PrefetchCache, limit int, log *slog.Logger) *Prefetcher {
	return &Prefetcher{client: c, cache: cache, limit: limit, log: log}
}

// Targets picks the titles worth prefetching from the links of page from:
// uncached wiki articles other than from, in link order.
func (p *Prefetcher) Targets(from page.Title, links []Link) []page.Title {
	if p.limit <= 0 {
		return nil
	}
	seen := map[page.Key]bool{from.Key(): true}
	var out []page.Title
	for _, l := range links {
		if !l.Internal || l.Title.IsSpecial() {
			continue
		}
		k := l.Title.Key()
		if seen[k] || p.cache.Contains(k) {
			continue
		}
		seen[k] = true
		out = append(out, l.Title.WithFragment(""))
		if len(out) == p.limit {
			break
		}
	}
	return out
}

// Start prefetches in the background, cancelling the previous run.
func (p *Prefetcher) Start(ctx context.Context, from page.Title, links []Link) {
	titles := p.Targets(from, links)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if len(titles) == 0 {
		p.cancel = nil
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer cancel()
		_ = p.Run(ctx, titles)
	}()
}

// Run fetches titles into the cache and returns when all are done. Failed
// fetches are logged and skipped; only cancellation is an error.
func (p *Prefetcher) Run(ctx context.Context, titles []page.Title) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	for _, t := range titles {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if p.cache.Contains(t.Key()) {
				return nil
			}
			a, err := p.client.Article(ctx, t)
			if err != nil {
				p.log.Debug("prefetch failed", "title", t.Text, "error", err)
				return nil
			}
			p.cache.Put(t.Key(), a, a.Cost())
			return nil
		})
	}
	return g.Wait()
}

// Stop cancels any running prefetch and waits for it to finish.
func (p *Prefetcher) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}
