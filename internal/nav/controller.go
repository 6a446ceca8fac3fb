package nav

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// Controller owns the navigation stack.
type Controller struct {
	renderer Renderer
	fetcher  Fetcher
	cache    Cache
	history  HistoryRecorder
	observer Observer
	external ExternalOpener
	shell    Shell
	log      *slog.Logger
	now      func() time.Time
	run      func(func())
	post     func(func())
	site     func() string

	mu       sync.Mutex
	ctx      context.Context
	started  bool
	stack    []*Entry
	gen      uint64
	overlays Overlays
	pending  []fetchJob
}

type fetchJob struct {
	entry *Entry
	gen   uint64
	title page.Title
}

// New creates a stopped controller. Start or Restore activates it.
func New(r Renderer, f Fetcher, opts ...Option) *Controller {
	c := &Controller{renderer: r, fetcher: f}
	defaults(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start activates the controller and handles the launch intent. The stack
// always holds at least the main page afterwards, even if the intent fails.
// ctx bounds all fetches started by the controller.
func (c *Controller) Start(ctx context.Context, in Intent) error {
	c.mu.Lock()
	c.ctx = ctx
	c.started = true
	c.stack = nil
	if c.overlays != (Overlays{}) {
		c.overlays = Overlays{}
		c.notify()
	}
	err := c.handleIntent(in)
	if len(c.stack) == 0 {
		if merr := c.navigate(c.mainPage(), FromMainPage); merr != nil && err == nil {
			err = merr
		}
	}
	jobs := c.takePending()
	c.mu.Unlock()

	c.launch(jobs)
	return err
}

// Stop deactivates the controller. Completions still in flight are dropped.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	for _, e := range c.stack {
		e.release()
	}
	c.stack = nil
	c.pending = nil
}

// HandleRequest navigates to t. A request for the page already on top does
// not push: a non-empty fragment scrolls it instead, and a top entry whose
// last load failed is fetched again. Special pages go to the external
// opener and leave the stack alone.
func (c *Controller) HandleRequest(t page.Title, p Provenance) error {
	return c.do(func() error { return c.navigate(t, p) })
}

// ShowScreen pushes an ancillary screen. If the top entry is already that
// screen it is replaced with a fresh entry.
func (c *Controller) ShowScreen(s Screen) error {
	return c.do(func() error { return c.showScreen(s) })
}

// GoBack handles a back press: action mode, then the search overlay, then
// the drawer, then the top content state, and finally the stack. It
// reports BackExit when only one entry is left; the stack is never emptied.
func (c *Controller) GoBack() (BackResult, error) {
	var res BackResult
	err := c.do(func() error {
		var err error
		res, err = c.goBack()
		return err
	})
	return res, err
}

// Reset collapses the stack to the main page of the current site.
func (c *Controller) Reset() error {
	return c.do(func() error {
		c.reset()
		return nil
	})
}

// Refresh redraws the top entry, from the cache when possible. It is used
// after theme or text size changes.
func (c *Controller) Refresh() error {
	return c.do(func() error {
		c.display(c.top())
		return nil
	})
}

// Reload drops the top page from the cache and fetches it again.
func (c *Controller) Reload() error {
	return c.do(func() error {
		top := c.top()
		if top.IsPage() {
			c.cache.Invalidate(top.Title.Key())
		}
		c.display(top)
		return nil
	})
}

// HandleIntent routes an external entry point.
func (c *Controller) HandleIntent(in Intent) error {
	return c.do(func() error { return c.handleIntent(in) })
}

// Top returns a copy of the visible entry.
func (c *Controller) Top() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		return Entry{}, false
	}
	return *c.stack[len(c.stack)-1], true
}

// Stack returns copies of all entries, bottom first.
func (c *Controller) Stack() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.stack))
	for i, e := range c.stack {
		out[i] = *e
	}
	return out
}

// Len returns the stack depth.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stack)
}

// Started reports whether the controller is active.
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// do runs fn locked on a started controller and launches the fetches it
// queued once the lock is released.
func (c *Controller) do(fn func() error) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	err := fn()
	jobs := c.takePending()
	c.mu.Unlock()

	c.launch(jobs)
	return err
}

func (c *Controller) takePending() []fetchJob {
	jobs := c.pending
	c.pending = nil
	return jobs
}

func (c *Controller) launch(jobs []fetchJob) {
	if len(jobs) == 0 {
		return
	}
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	for _, job := range jobs {
		c.run(func() {
			doc, err := c.fetcher.Fetch(ctx, job.title)
			c.post(func() { c.complete(job, doc, err) })
		})
	}
}

// complete applies a finished fetch if its entry is still the one on top
// and no newer load of it has started.
func (c *Controller) complete(job fetchJob, doc Document, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top != job.entry || top.gen != job.gen {
		c.log.Debug("dropping stale page load", "title", job.title.String(), "gen", job.gen)
		return
	}

	if err != nil {
		c.log.Warn("page load failed", "title", job.title.String(), "error", err)
		c.fail(top, err)
		return
	}
	c.cache.Put(top.Title.Key(), doc, doc.Cost())
	c.render(top, doc)
}

func (c *Controller) navigate(t page.Title, p Provenance) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.setDrawer(false)

	if t.IsSpecial() {
		c.log.Debug("opening special page externally", "title", t.String())
		c.external.OpenExternal(t)
		return nil
	}

	if c.reuseTop(t) {
		return nil
	}
	c.popScreens()
	if c.reuseTop(t) {
		return nil
	}

	if top := c.top(); top != nil {
		if fc, ok := top.State.(FindCloser); ok {
			fc.CloseFind()
		}
	}

	e := &Entry{Screen: ScreenPage, Title: t, Provenance: p, Time: c.now()}
	c.stack = append(c.stack, e)
	c.load(e)

	c.history.Record(t, p, e.Time)
	c.observer.PageViewed(e)
	return nil
}

// reuseTop handles a request for the page already on top.
func (c *Controller) reuseTop(t page.Title) bool {
	top := c.top()
	if top == nil || !top.IsPage() || !top.Title.Same(t) {
		return false
	}
	switch {
	case top.status == StatusFailed:
		c.log.Debug("retrying failed page", "title", t.String())
		c.load(top)
	case t.Fragment != "":
		c.renderer.ScrollTo(top, t.Fragment)
	}
	return true
}

// popScreens removes non-page entries above the last page entry.
func (c *Controller) popScreens() {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.IsPage() {
			return
		}
		top.release()
		c.stack = c.stack[:len(c.stack)-1]
	}
}

func (c *Controller) showScreen(s Screen) error {
	if s == ScreenPage {
		return ErrNotScreen
	}
	c.setDrawer(false)

	e := &Entry{Screen: s, Time: c.now()}
	if top := c.top(); top != nil && top.Screen == s {
		top.release()
		c.stack[len(c.stack)-1] = e
	} else {
		c.popScreens()
		c.stack = append(c.stack, e)
	}
	e.State = c.renderer.ShowScreen(e)
	return nil
}

func (c *Controller) goBack() (BackResult, error) {
	if len(c.stack) == 0 {
		return BackExit, ErrNotStarted
	}

	if c.overlays.ActionMode {
		c.overlays.ActionMode = false
		c.notify()
		return BackHandled, nil
	}
	if c.overlays.Search {
		fromWidget := c.overlays.FromWidget
		c.overlays.Search, c.overlays.Query, c.overlays.FromWidget = false, "", false
		c.notify()
		if fromWidget {
			return BackExit, nil
		}
		return BackHandled, nil
	}
	if c.overlays.Drawer {
		c.setDrawer(false)
		return BackHandled, nil
	}

	top := c.top()
	if bh, ok := top.State.(BackHandler); ok && bh.HandleBack() {
		return BackHandled, nil
	}

	c.observer.BackPressed()
	if len(c.stack) == 1 {
		return BackExit, nil
	}
	top.release()
	c.stack = c.stack[:len(c.stack)-1]
	c.display(c.top())
	return BackHandled, nil
}

func (c *Controller) reset() {
	for _, e := range c.stack {
		e.release()
	}
	c.stack = nil
	c.overlays = Overlays{}
	c.notify()
	if err := c.navigate(c.mainPage(), FromMainPage); err != nil {
		c.log.Error("cannot open main page", "site", c.site(), "error", err)
	}
}

// display shows an entry that is already on the stack.
func (c *Controller) display(e *Entry) {
	if e == nil {
		return
	}
	if !e.IsPage() {
		e.State = c.renderer.ShowScreen(e)
		return
	}
	c.load(e)
}

// load shows e from the cache or queues a fetch under a new generation.
func (c *Controller) load(e *Entry) {
	c.gen++
	e.gen = c.gen
	e.err = nil

	if doc, ok := c.cache.Get(e.Title.Key()); ok {
		c.render(e, doc)
		return
	}

	e.status = StatusLoading
	c.renderer.ShowLoading(e)
	c.pending = append(c.pending, fetchJob{entry: e, gen: e.gen, title: e.Title})
}

func (c *Controller) render(e *Entry, doc Document) {
	state, err := c.renderer.Render(e, doc)
	if err != nil {
		c.cache.Invalidate(e.Title.Key())
		c.fail(e, fmt.Errorf("rendering %s: %w", e.Title, err))
		return
	}
	e.State = state
	e.status = StatusReady
	if e.Title.Fragment != "" {
		c.renderer.ScrollTo(e, e.Title.Fragment)
	}
}

func (c *Controller) fail(e *Entry, err error) {
	e.State = nil
	e.status = StatusFailed
	e.err = err
	c.renderer.ShowError(e, err)
}

func (c *Controller) top() *Entry {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

func (c *Controller) mainPage() page.Title {
	return page.MainPage(c.site())
}
