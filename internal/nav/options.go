package nav

import (
	"log/slog"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/pagecache"
)

// Option configures a Controller.
type Option func(*Controller)

// WithCache sets the page cache. The default is an in-memory cache of
// pagecache.DefaultCapacity bytes.
func WithCache(c Cache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithHistory sets the recorder notified of accepted navigations.
func WithHistory(h HistoryRecorder) Option {
	return func(ctl *Controller) { ctl.history = h }
}

// WithObserver sets the session observer.
func WithObserver(o Observer) Option {
	return func(ctl *Controller) { ctl.observer = o }
}

// WithExternalOpener sets where special pages are sent.
func WithExternalOpener(o ExternalOpener) Option {
	return func(ctl *Controller) { ctl.external = o }
}

// WithShell sets the overlay listener.
func WithShell(s Shell) Option {
	return func(ctl *Controller) { ctl.shell = s }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// WithClock sets the clock used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(ctl *Controller) { ctl.now = now }
}

// WithRunner sets how fetches are started. The default runs each fetch on
// its own goroutine.
func WithRunner(run func(func())) Option {
	return func(ctl *Controller) { ctl.run = run }
}

// WithPoster sets how fetch completions get back to the control goroutine.
// The default applies them directly from the fetch goroutine.
func WithPoster(post func(func())) Option {
	return func(ctl *Controller) { ctl.post = post }
}

// WithSite sets the function returning the primary site, consulted for the
// main page and for search requests. The default is page.DefaultSite.
func WithSite(site func() string) Option {
	return func(ctl *Controller) { ctl.site = site }
}

func defaults(ctl *Controller) {
	ctl.cache = pagecache.New[Document](pagecache.DefaultCapacity)
	ctl.history = nopHistory{}
	ctl.observer = nopObserver{}
	ctl.external = nopOpener{}
	ctl.shell = nopShell{}
	ctl.log = slog.Default()
	ctl.now = time.Now
	ctl.run = func(f func()) { go f() }
	ctl.post = func(f func()) { f() }
	ctl.site = func() string { return page.DefaultSite }
}
