package nav

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/pagecache"
)

var errOffline = errors.New("offline")

type doc struct {
	title string
	cost  int64
}

func (d doc) Cost() int64 { return d.cost }

// pageState is the content state handed out by fakeRenderer.
type pageState struct {
	title    string
	findOpen bool
	closed   int
}

func (s *pageState) HandleBack() bool {
	if s.findOpen {
		s.findOpen = false
		return true
	}
	return false
}

func (s *pageState) CloseFind() {
	s.findOpen = false
	s.closed++
}

type fakeRenderer struct {
	mu       sync.Mutex
	rendered []string
	screens  []Screen
	loading  []string
	failed   []string
	scrolls  []string
	entries  []*Entry
	failNext bool
}

func (r *fakeRenderer) Render(e *Entry, d Document) (ContentState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return nil, errors.New("bad markup")
	}
	r.rendered = append(r.rendered, e.Title.Text)
	r.entries = append(r.entries, e)
	return &pageState{title: e.Title.Text}, nil
}

func (r *fakeRenderer) ShowScreen(e *Entry) ContentState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, e.Screen)
	r.entries = append(r.entries, e)
	return e.Screen.String()
}

func (r *fakeRenderer) ShowLoading(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, e.Title.Text)
}

func (r *fakeRenderer) ShowError(e *Entry, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, e.Title.Text)
}

func (r *fakeRenderer) ScrollTo(e *Entry, fragment string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolls = append(r.scrolls, e.Title.Text+"#"+fragment)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	cost  int64
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: map[string]int{}, fail: map[string]error{}, cost: 10}
}

func (f *fakeFetcher) Fetch(_ context.Context, t page.Title) (Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[t.Text]++
	if err := f.fail[t.Text]; err != nil {
		return nil, err
	}
	return doc{title: t.Text, cost: f.cost}, nil
}

func (f *fakeFetcher) count(title string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[title]
}

func (f *fakeFetcher) setFail(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[title] = err
}

type record struct {
	title string
	prov  Provenance
}

type fakeHistory struct{ records []record }

func (h *fakeHistory) Record(t page.Title, p Provenance, _ time.Time) {
	h.records = append(h.records, record{t.Text, p})
}

type fakeObserver struct {
	viewed  []string
	backs   int
	widgets []Widget
}

func (o *fakeObserver) PageViewed(e *Entry)   { o.viewed = append(o.viewed, e.Title.Text) }
func (o *fakeObserver) BackPressed()          { o.backs++ }
func (o *fakeObserver) WidgetTapped(w Widget) { o.widgets = append(o.widgets, w) }

func (o *fakeObserver) lastWidget() (Widget, bool) {
	if len(o.widgets) == 0 {
		return 0, false
	}
	return o.widgets[len(o.widgets)-1], true
}

type fakeOpener struct{ opened []string }

func (o *fakeOpener) OpenExternal(t page.Title) { o.opened = append(o.opened, t.Text) }

type fakeShell struct{ last Overlays }

func (s *fakeShell) OverlaysChanged(o Overlays) { s.last = o }

// jobQueue holds fetches until the test releases them.
type jobQueue struct {
	mu   sync.Mutex
	jobs []func()
}

func (q *jobQueue) run(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, f)
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// release runs the i-th queued fetch.
func (q *jobQueue) release(i int) {
	q.mu.Lock()
	f := q.jobs[i]
	q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
	q.mu.Unlock()
	f()
}

func (q *jobQueue) drain() {
	for q.len() > 0 {
		q.release(0)
	}
}

type harness struct {
	ctl      *Controller
	renderer *fakeRenderer
	fetcher  *fakeFetcher
	cache    *pagecache.Cache[Document]
	history  *fakeHistory
	observer *fakeObserver
	opener   *fakeOpener
	shell    *fakeShell
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		renderer: &fakeRenderer{},
		fetcher:  newFakeFetcher(),
		cache:    pagecache.New[Document](1000),
		history:  &fakeHistory{},
		observer: &fakeObserver{},
		opener:   &fakeOpener{},
		shell:    &fakeShell{},
	}
	base := []Option{
		WithCache(h.cache),
		WithHistory(h.history),
		WithObserver(h.observer),
		WithExternalOpener(h.opener),
		WithShell(h.shell),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunner(func(f func()) { f() }),
	}
	h.ctl = New(h.renderer, h.fetcher, append(base, opts...)...)
	return h
}

// started returns a harness already showing the main page.
func started(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := newHarness(t, opts...)
	if err := h.ctl.Start(context.Background(), Intent{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return h
}

func title(text string) page.Title {
	return page.MustNew(page.DefaultSite, text)
}

func (h *harness) open(t *testing.T, text string) {
	t.Helper()
	if err := h.ctl.HandleRequest(title(text), FromInternalLink); err != nil {
		t.Fatalf("HandleRequest(%q) error = %v", text, err)
	}
}

func (h *harness) topTitle(t *testing.T) string {
	t.Helper()
	top, ok := h.ctl.Top()
	if !ok {
		t.Fatal("stack is empty")
	}
	if !top.IsPage() {
		return top.Screen.String()
	}
	return top.Title.Text
}

func (h *harness) back(t *testing.T) BackResult {
	t.Helper()
	res, err := h.ctl.GoBack()
	if err != nil {
		t.Fatalf("GoBack() error = %v", err)
	}
	return res
}
