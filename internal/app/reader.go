package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/storage"
	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/ui"
	"github.com/vidyasagar/wikisurf/internal/wiki"
)

const (
	historyLimit = 200
	storeTimeout = 5 * time.Second
)

var errUnknownDocument = errors.New("unknown document type")

// reader draws what the navigation controller asks for. The controller
// calls it with its lock held, so nothing here calls back into the
// controller; overlay changes and external opens are recorded and picked
// up by the Model after the call returns.
type reader struct {
	env *Env
	log *slog.Logger
	ctx context.Context

	viewport  ui.PageViewport
	statusBar ui.StatusBar
	contents  ui.ContentsPane
	history   ui.ListPanel
	saved     ui.ListPanel

	current *nav.Entry
	screen  nav.Screen
	page    *wiki.RenderedPage // nil unless a page is shown

	// Search screen.
	query   string
	results []wiki.SearchResult
	links   []wiki.Link

	textSize     int
	needsRefresh bool // the reading column changed under a shown page

	overlays        nav.Overlays
	overlaysChanged bool
	external        []page.Title
}

func newReader(ctx context.Context, env *Env) *reader {
	return &reader{
		env:       env,
		log:       env.Log,
		ctx:       ctx,
		viewport:  ui.NewPageViewport(),
		statusBar: ui.NewStatusBar(),
		contents:  ui.NewContentsPane(),
		history:   ui.NewListPanel("History", "No history yet. Pages you read show up here."),
		saved:     ui.NewListPanel("Saved pages", "No saved pages. Press w on a page to keep it for offline reading."),
		textSize:  env.Config.TextSize,
	}
}

// pageState is the content state of a displayed article.
type pageState struct {
	r      *reader
	page   *wiki.RenderedPage
	offset int // scroll position while another entry is shown
}

// HandleBack closes find-in-page, then the contents pane.
func (s *pageState) HandleBack() bool {
	if !s.shown() {
		return false
	}
	switch {
	case s.r.viewport.Finding():
		s.r.viewport.ClearFind()
		return true
	case s.r.contents.IsVisible():
		s.r.contents.Hide()
		s.r.relayout()
		return true
	}
	return false
}

// CloseFind drops the find term when another page is pushed over this one.
func (s *pageState) CloseFind() {
	if s.shown() {
		s.r.viewport.ClearFind()
	}
}

func (s *pageState) shown() bool {
	return s.r.current != nil && s.r.current.State == nav.ContentState(s)
}

// listState is the content state of the history and saved screens.
type listState struct {
	panel *ui.ListPanel
}

// searchState is the content state of the search results screen.
type searchState struct {
	query string
	links []wiki.Link
}

// Render implements nav.Renderer.
func (r *reader) Render(e *nav.Entry, doc nav.Document) (nav.ContentState, error) {
	a, ok := doc.(*wiki.Article)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errUnknownDocument, doc)
	}
	rp, err := wiki.Render(a, wiki.RenderOptions{
		Width:    r.contents.ArticleWidth(),
		TextSize: r.textSize,
	})
	if err != nil {
		return nil, err
	}

	st := &pageState{r: r, page: rp}
	redraw := r.current == e && r.page != nil
	if prev, ok := e.State.(*pageState); ok {
		st.offset = prev.offset
	}
	r.leave(e)

	r.current, r.screen, r.page = e, nav.ScreenPage, rp
	r.contents.SetSections(a.Sections)
	if redraw {
		r.viewport.ReplaceContent(rp.Content)
	} else {
		r.viewport.SetContent(rp.Content)
		r.viewport.GotoLine(st.offset)
	}

	r.statusBar.SetLoading(false)
	r.statusBar.SetMessage("")
	r.statusBar.SetTitle(a.DisplayTitle)
	r.statusBar.SetOffline(a.Offline)
	r.statusBar.SetLinkCount(len(rp.Links))

	if r.env.Prefetch != nil && !redraw {
		r.env.Prefetch.Start(r.ctx, a.Title, rp.Links)
	}
	r.log.Debug("rendered page", "title", a.Title.String(), "lines", len(rp.Lines), "links", len(rp.Links))
	return st, nil
}

// ShowScreen implements nav.Renderer.
func (r *reader) ShowScreen(e *nav.Entry) nav.ContentState {
	r.leave(e)
	r.current, r.screen, r.page = e, e.Screen, nil
	r.contents.SetSections(nil)
	r.statusBar.SetLoading(false)
	r.statusBar.SetOffline(false)
	r.statusBar.SetLinkCount(0)

	ctx, cancel := context.WithTimeout(r.ctx, storeTimeout)
	defer cancel()

	switch e.Screen {
	case nav.ScreenHistory:
		r.history.SetItems(r.historyItems(ctx))
		r.statusBar.SetTitle("History")
		return &listState{panel: &r.history}

	case nav.ScreenSaved:
		r.saved.SetItems(r.savedItems(ctx))
		r.statusBar.SetTitle("Saved pages")
		return &listState{panel: &r.saved}

	default:
		content, links := wiki.RenderSearchResults(r.results, r.query)
		r.links = links
		r.viewport.SetContent(content)
		r.statusBar.SetTitle("Search: " + r.query)
		r.statusBar.SetLinkCount(len(links))
		return &searchState{query: r.query, links: links}
	}
}

// ShowLoading implements nav.Renderer.
func (r *reader) ShowLoading(e *nav.Entry) {
	r.leave(e)
	r.current, r.screen, r.page = e, nav.ScreenPage, nil
	r.contents.SetSections(nil)

	t := theme.Current
	r.viewport.SetContent(lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(2, 4).
		Render("Loading " + e.Title.Text + "..."))

	r.statusBar.SetLoading(true)
	r.statusBar.SetMessage("")
	r.statusBar.SetTitle(e.Title.Text)
	r.statusBar.SetOffline(false)
	r.statusBar.SetLinkCount(0)
}

// ShowError implements nav.Renderer.
func (r *reader) ShowError(e *nav.Entry, err error) {
	r.leave(e)
	r.current, r.screen, r.page = e, nav.ScreenPage, nil
	r.contents.SetSections(nil)

	t := theme.Current
	errStyle := lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true).
		Padding(2, 4)
	detailStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 4)

	headline, detail := describeError(err)
	r.viewport.SetContent(errStyle.Render(headline) + "\n\n" +
		detailStyle.Render(fmt.Sprintf("Page: %s\nError: %s\n\nPress R to try again, Esc to go back.", e.Title, detail)))

	r.statusBar.SetLoading(false)
	r.statusBar.SetTitle(e.Title.Text)
	r.statusBar.SetError(headline)
	r.statusBar.SetLinkCount(0)
}

func describeError(err error) (headline, detail string) {
	switch {
	case errors.Is(err, wiki.ErrPageNotFound):
		return "No such article", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Wikipedia took too long to answer", err.Error()
	case errors.Is(err, errUnknownDocument):
		return "Cannot display this page", err.Error()
	}
	return "Failed to load page", err.Error()
}

// ScrollTo implements nav.Renderer.
func (r *reader) ScrollTo(e *nav.Entry, fragment string) {
	if r.current != e || r.page == nil {
		return
	}
	if n, ok := r.page.Line(fragment); ok {
		r.viewport.GotoLine(n)
		return
	}
	r.statusBar.SetMessage("No section " + strings.ReplaceAll(fragment, "_", " "))
}

// OverlaysChanged implements nav.Shell.
func (r *reader) OverlaysChanged(o nav.Overlays) {
	r.overlays = o
	r.overlaysChanged = true
}

// OpenExternal implements nav.ExternalOpener.
func (r *reader) OpenExternal(t page.Title) {
	r.external = append(r.external, t)
}

func (r *reader) takeOverlays() (nav.Overlays, bool) {
	changed := r.overlaysChanged
	r.overlaysChanged = false
	return r.overlays, changed
}

func (r *reader) takeExternal() []page.Title {
	out := r.external
	r.external = nil
	return out
}

// leave remembers the scroll position of the entry being replaced on
// screen by next.
func (r *reader) leave(next *nav.Entry) {
	if r.current == nil || r.current == next {
		return
	}
	if ps, ok := r.current.State.(*pageState); ok {
		ps.offset = r.viewport.YOffset()
	}
}

// relayout resizes the viewport after the contents pane opened or closed.
// The page itself is redrawn by the Model through the controller.
func (r *reader) relayout() {
	r.viewport.SetSize(r.contents.ArticleWidth(), r.viewport.Height())
	r.needsRefresh = true
}

// link returns link n of whatever is shown.
func (r *reader) link(n int) (wiki.Link, bool) {
	if r.page != nil {
		return r.page.Link(n)
	}
	if r.screen == nav.ScreenSearch && n >= 1 && n <= len(r.links) {
		return r.links[n-1], true
	}
	return wiki.Link{}, false
}

// list returns the list panel of the screen shown, if any.
func (r *reader) list() *ui.ListPanel {
	switch r.screen {
	case nav.ScreenHistory:
		return &r.history
	case nav.ScreenSaved:
		return &r.saved
	}
	return nil
}

func (r *reader) historyItems(ctx context.Context) []ui.ListItem {
	if r.env.History == nil {
		return nil
	}
	entries, err := r.env.History.Recent(ctx, historyLimit)
	if err != nil {
		r.log.Warn("loading history failed", "error", err)
		r.statusBar.SetError("Cannot load history")
		return nil
	}
	items := make([]ui.ListItem, 0, len(entries))
	for _, h := range entries {
		items = append(items, ui.ListItem{
			ID:     h.ID,
			Title:  h.Title,
			Detail: sourceLabel(h),
			At:     h.VisitedAt,
		})
	}
	return items
}

func sourceLabel(h storage.HistoryEntry) string {
	if h.Source == nav.NoProvenance {
		return ""
	}
	return strings.ReplaceAll(h.Source.String(), "_", " ")
}

func (r *reader) savedItems(ctx context.Context) []ui.ListItem {
	if r.env.Saved == nil {
		return nil
	}
	pages, err := r.env.Saved.List(ctx)
	if err != nil {
		r.log.Warn("loading saved pages failed", "error", err)
		r.statusBar.SetError("Cannot load saved pages")
		return nil
	}
	items := make([]ui.ListItem, 0, len(pages))
	for _, sp := range pages {
		items = append(items, ui.ListItem{
			Title:  sp.Title,
			Detail: page.SiteLanguage(sp.Title.Site),
			At:     sp.SavedAt,
		})
	}
	return items
}
