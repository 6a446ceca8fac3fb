// Package app is the bubbletea host of the reader. The Model owns the
// terminal; the navigation controller decides what is shown and draws
// through the reader, which the Model lays out.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/config"
	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/storage"
	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/ui"
	"github.com/vidyasagar/wikisurf/internal/zero"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeCommand      // command bar active
	ModeSearch       // search overlay
	ModeMenu         // drawer open
	ModeSelect       // action mode
	ModeList         // history or saved screen
	ModeHelp         // help overlay
)

// Options selects how the reader starts.
type Options struct {
	// Intent is handled on start unless Restore is set.
	Intent nav.Intent
	// Restore resumes a saved stack.
	Restore *nav.State
}

// Model is the top-level bubbletea model for wikisurf.
type Model struct {
	env  *Env
	keys KeyMap
	ctl  *nav.Controller
	r    *reader
	mail *mailbox

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe []func()

	launch  nav.Intent
	restore *nav.State

	// UI components
	crumbs     ui.Crumbs
	commandBar ui.CommandBar
	searchBar  ui.SearchBar
	drawer     ui.Drawer
	help       ui.PageViewport

	overlays    nav.Overlays
	mode        Mode
	width       int
	height      int
	ready       bool
	lastGKey    bool // for "gg" detection
	helpVisible bool
	searchSeq   int
	quitting    bool
}

// New creates the Model. The controller starts on the first window size
// message, once the reading column is known.
func New(env *Env, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	mail := newMailbox()
	r := newReader(ctx, env)

	navOpts := []nav.Option{
		nav.WithObserver(env.Funnel),
		nav.WithExternalOpener(r),
		nav.WithShell(r),
		nav.WithLogger(env.Log),
		nav.WithPoster(mail.post),
		nav.WithSite(env.Config.Site),
	}
	if env.Cache != nil {
		navOpts = append(navOpts, nav.WithCache(env.Cache))
	}
	if env.History != nil {
		navOpts = append(navOpts, nav.WithHistory(env.History))
	}
	if env.Run != nil {
		navOpts = append(navOpts, nav.WithRunner(env.Run))
	}

	m := Model{
		env:        env,
		keys:       DefaultKeyMap(),
		ctl:        nav.New(r, env.Fetcher, navOpts...),
		r:          r,
		mail:       mail,
		ctx:        ctx,
		cancel:     cancel,
		launch:     opts.Intent,
		restore:    opts.Restore,
		crumbs:     ui.NewCrumbs(),
		commandBar: ui.NewCommandBar(),
		searchBar:  ui.NewSearchBar(),
		drawer:     ui.NewDrawer(),
		help:       ui.NewPageViewport(),
	}

	lang := page.SiteLanguage(env.Config.Site())
	m.r.statusBar.SetLanguage(lang)
	m.drawer.SetLanguage(lang)
	m.searchBar.SetHint(env.Zero.Hint())

	m.unsubscribe = []func(){
		env.Bus.Theme.Subscribe(func(name string) {
			theme.Set(name)
			env.Config.Theme = name
			saveConfig(env)
		}),
		env.Bus.TextSize.Subscribe(func(size int) {
			r.textSize = size
			env.Config.TextSize = size
			saveConfig(env)
		}),
		env.Bus.Zero.Subscribe(func(n zero.Notice) {
			// Published from fetch goroutines and from Update alike.
			go mail.post(func() { r.showNotice(n) })
		}),
	}
	return m
}

// saveConfig writes settings changed in the UI back to the file they came
// from. Configs that were never loaded from disk stay in memory.
func saveConfig(env *Env) {
	if env.Config.Path() == "" {
		return
	}
	if err := env.Config.Save(); err != nil {
		env.Log.Warn("saving config failed", "error", err)
	}
}

// showNotice shows a Wikipedia Zero state change.
func (r *reader) showNotice(n zero.Notice) {
	switch n.Kind {
	case zero.NoticeCarrier:
		msg := n.Message
		r.statusBar.SetCarrier(&msg)
		r.statusBar.SetMessage(n.Title + " - " + n.Detail)
	case zero.NoticeCharged:
		r.statusBar.SetCarrier(nil)
		r.statusBar.SetError(n.Title + ". " + n.Detail)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.mail.wait(), tea.SetWindowTitle("wikisurf"))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := m.ready && msg.Width != m.width
		first := !m.ready
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		switch {
		case first:
			return m, m.start()
		case resized:
			return m, m.refresh()
		}
		return m, nil

	case postedMsg:
		msg.run()
		return m, tea.Batch(m.mail.wait(), m.sync())

	case searchTickMsg:
		return m.handleSearchTick(msg)

	case searchResultsMsg:
		return m.handleSearchResults(msg)

	case randomMsg:
		if msg.err != nil {
			m.r.statusBar.SetError("Random article: " + msg.err.Error())
			return m, nil
		}
		return m, m.navigate(msg.title, nav.FromRandom)

	case statusMsg:
		if msg.err != nil {
			m.r.statusBar.SetError(msg.text + ": " + msg.err.Error())
		} else {
			m.r.statusBar.SetMessage(msg.text)
		}
		return m, nil

	case tea.FocusMsg:
		m.env.Zero.Resume()
		return m, nil

	case tea.BlurMsg:
		m.env.Zero.Pause()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Forward the rest (mouse wheel) to the viewport.
	vp, cmd := m.r.viewport.Update(msg)
	m.r.viewport = *vp
	m.syncStatusBar()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Loading wikisurf..."
	}

	// Layout:
	// [crumbs]
	// [search bar] (if active)
	// [body]
	// [status bar]
	// [command bar] (if active)
	var sections []string
	sections = append(sections, m.crumbs.View())
	if m.searchBar.IsActive() {
		sections = append(sections, m.searchBar.View())
	}

	bodyHeight := m.bodyHeight()
	var body string
	if lp := m.r.list(); lp != nil {
		body = lp.View()
	} else if m.r.page != nil {
		body = m.r.contents.Render(m.r.viewport.View())
	} else {
		body = m.r.viewport.View()
	}
	sections = append(sections, lipgloss.NewStyle().MaxHeight(bodyHeight).Render(body))

	sections = append(sections, m.r.statusBar.View())
	if m.commandBar.IsActive() {
		sections = append(sections, m.commandBar.View())
	}

	result := lipgloss.JoinVertical(lipgloss.Left, sections...)

	var overlay string
	switch {
	case m.helpVisible:
		overlay = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Current.Primary).
			Padding(0, 1).
			Render(m.help.View())
	case m.overlays.Drawer:
		overlay = m.drawer.View()
	}
	if overlay != "" {
		result = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(theme.Current.Background),
		)
	}
	return result
}

// bodyHeight is the height left between the bars.
func (m *Model) bodyHeight() int {
	h := m.height - 1 - 1 // crumbs, status bar
	if m.commandBar.IsActive() {
		h--
	}
	if m.searchBar.IsActive() {
		h -= 3 + len(m.searchBar.Results()) // border adds height
		if len(m.searchBar.Results()) == 0 && m.searchBar.Value() != "" {
			h--
		}
	}
	return max(h, 1)
}

// layout recalculates dimensions for all components.
func (m *Model) layout() {
	h := m.bodyHeight()
	m.crumbs.SetWidth(m.width)
	m.searchBar.SetWidth(m.width)
	m.commandBar.SetWidth(m.width)
	m.drawer.SetSize(m.width, m.height)
	m.r.statusBar.SetWidth(m.width)
	m.r.contents.SetSize(m.width, h)
	m.r.viewport.SetSize(m.r.contents.ArticleWidth(), h)
	m.r.history.SetSize(m.width, h)
	m.r.saved.SetSize(m.width, h)
	m.help.SetSize(min(m.width-4, 72), max(m.height-4, 1))
}

// start activates the controller with the launch intent or saved state.
func (m *Model) start() tea.Cmd {
	if m.restore != nil {
		m.ctl.Restore(m.ctx, *m.restore)
		m.restore = nil
	} else if err := m.ctl.Start(m.ctx, m.launch); err != nil {
		m.env.Log.Warn("launch request failed", "kind", m.launch.Kind, "error", err)
		m.r.statusBar.SetError("Cannot open " + launchLabel(m.launch) + ": " + err.Error())
	}
	return m.sync()
}

func launchLabel(in nav.Intent) string {
	switch {
	case in.URI != "":
		return in.URI
	case in.Query != "":
		return in.Query
	case !in.Title.IsZero():
		return in.Title.Text
	}
	return "page"
}

// sync applies what the reader recorded during controller calls: overlay
// changes, special pages to open externally, and the breadcrumb trail.
func (m *Model) sync() tea.Cmd {
	var cmds []tea.Cmd

	if o, changed := m.r.takeOverlays(); changed {
		cmds = append(cmds, m.applyOverlays(o))
	}
	for _, t := range m.r.takeExternal() {
		m.r.statusBar.SetMessage("Opening " + t.String() + " in your browser")
		cmds = append(cmds, openBrowser(t.URL()))
	}
	if m.r.needsRefresh {
		m.r.needsRefresh = false
		cmds = append(cmds, m.refresh())
	}

	m.crumbs.SetLabels(crumbLabels(m.ctl.Stack()))
	m.searchBar.SetHint(m.env.Zero.Hint())
	m.updateMode()
	m.syncStatusBar()
	return tea.Batch(cmds...)
}

// applyOverlays opens or closes the search bar and drawer to match the
// controller.
func (m *Model) applyOverlays(o nav.Overlays) tea.Cmd {
	prev := m.overlays
	m.overlays = o

	var cmd tea.Cmd
	switch {
	case o.Search && (!prev.Search || o.Query != prev.Query):
		m.commandBar.Close()
		cmd = m.searchBar.Open(o.Query)
		if strings.TrimSpace(o.Query) != "" {
			cmd = tea.Batch(cmd, m.scheduleSearch(o.Query))
		}
	case !o.Search && m.searchBar.IsActive():
		m.searchBar.Close()
	}
	if o.Drawer {
		m.commandBar.Close()
	}
	m.layout()
	return cmd
}

func crumbLabels(stack []nav.Entry) []string {
	labels := make([]string, 0, len(stack))
	for _, e := range stack {
		switch e.Screen {
		case nav.ScreenHistory:
			labels = append(labels, "History")
		case nav.ScreenSaved:
			labels = append(labels, "Saved")
		case nav.ScreenSearch:
			labels = append(labels, "Search")
		default:
			labels = append(labels, e.Title.Text)
		}
	}
	return labels
}

func (m *Model) updateMode() {
	switch {
	case m.helpVisible:
		m.mode = ModeHelp
	case m.commandBar.IsActive():
		m.mode = ModeCommand
	case m.overlays.Search:
		m.mode = ModeSearch
	case m.overlays.Drawer:
		m.mode = ModeMenu
	case m.overlays.ActionMode:
		m.mode = ModeSelect
	case m.r.list() != nil:
		m.mode = ModeList
	default:
		m.mode = ModeNormal
	}
}

// syncStatusBar updates the status bar with current state.
func (m *Model) syncStatusBar() {
	m.updateMode()
	sb := &m.r.statusBar

	switch m.mode {
	case ModeCommand:
		switch m.commandBar.Type() {
		case ui.CommandFind:
			sb.SetMode(ui.ModeFind)
		case ui.CommandFollow:
			sb.SetMode(ui.ModeFollow)
		default:
			sb.SetMode(ui.ModeCommand)
		}
	case ModeSearch:
		sb.SetMode(ui.ModeSearch)
	case ModeMenu, ModeHelp:
		sb.SetMode(ui.ModeMenu)
	case ModeSelect:
		sb.SetMode(ui.ModeSelect)
	case ModeList:
		if m.r.screen == nav.ScreenSaved {
			sb.SetMode(ui.ModeSaved)
		} else {
			sb.SetMode(ui.ModeHistory)
		}
	default:
		sb.SetMode(ui.ModeRead)
	}

	if m.r.list() != nil {
		sb.SetScrollInfo("")
		return
	}
	sb.SetScrollInfo(m.r.viewport.ScrollInfo())
	if info := m.r.viewport.FindInfo(); info != "" {
		sb.SetMessage(info)
	}
}

// refresh redraws the top entry at the current size and settings.
func (m *Model) refresh() tea.Cmd {
	top, ok := m.ctl.Top()
	if !ok || (top.IsPage() && top.Status() != nav.StatusReady) {
		return nil
	}
	if err := m.ctl.Refresh(); err != nil {
		m.env.Log.Warn("refresh failed", "error", err)
	}
	return m.sync()
}

// navigate asks the controller for t.
func (m *Model) navigate(t page.Title, p nav.Provenance) tea.Cmd {
	if err := m.ctl.HandleRequest(t, p); err != nil {
		m.r.statusBar.SetError(fmt.Sprintf("Cannot open %q: %s", t.Text, err))
	}
	return m.sync()
}

func (m *Model) showScreen(s nav.Screen) tea.Cmd {
	if err := m.ctl.ShowScreen(s); err != nil {
		m.r.statusBar.SetError(err.Error())
	}
	return m.sync()
}

// goBack handles a back press; the last entry quits.
func (m Model) goBack() (tea.Model, tea.Cmd) {
	m.lastGKey = false
	res, err := m.ctl.GoBack()
	if err != nil {
		m.env.Log.Warn("back failed", "error", err)
	}
	cmd := m.sync()
	if res == nav.BackExit {
		return m.quit()
	}
	return m, cmd
}

// quit saves the navigation state and stops everything the Model started.
// The Env is closed by the caller once the program has exited.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}
	m.quitting = true

	if m.ctl.Started() {
		if err := storage.SaveState(m.env.Config.DataPath(), m.ctl.Snapshot()); err != nil {
			m.env.Log.Warn("saving navigation state failed", "error", err)
		}
		m.ctl.Stop()
	}
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.mail.close()
	m.cancel()
	return m, tea.Quit
}

// handleKeyMsg processes key events based on current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Always allow Ctrl+C to quit.
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	m.updateMode()
	switch m.mode {
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeCommand:
		return m.handleCommandMode(msg)
	case ModeSearch:
		return m.handleSearchMode(msg)
	case ModeMenu:
		return m.handleDrawerMode(msg)
	case ModeSelect:
		return m.handleSelectMode(msg)
	case ModeList:
		return m.handleListMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleScroll moves the page for the scrolling keys.
func (m *Model) handleScroll(msg tea.KeyMsg) bool {
	vp := &m.r.viewport

	// gg detection: first "g" sets flag, second "g" goes to top.
	if key.Matches(msg, m.keys.GotoTop) {
		if m.lastGKey {
			m.lastGKey = false
			vp.GotoTop()
		} else {
			m.lastGKey = true
		}
		m.syncStatusBar()
		return true
	}

	handled := true
	switch {
	case key.Matches(msg, m.keys.ScrollDown):
		vp.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		vp.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		vp.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		vp.HalfPageUp()
	case key.Matches(msg, m.keys.GotoBottom):
		vp.GotoBottom()
	default:
		handled = false
	}
	m.lastGKey = false
	if handled {
		m.syncStatusBar()
	}
	return handled
}

// handleNormalMode processes keys while reading.
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleScroll(msg) {
		return m, nil
	}

	switch s := msg.String(); {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Back):
		return m.goBack()

	// Typing a number starts following that link.
	case len(s) == 1 && s[0] >= '1' && s[0] <= '9':
		cmd := m.commandBar.Open(ui.CommandFollow)
		m.commandBar.SetValue(s)
		m.layout()
		m.syncStatusBar()
		return m, cmd

	case key.Matches(msg, m.keys.FollowLink):
		cmd := m.commandBar.Open(ui.CommandFollow)
		m.layout()
		m.syncStatusBar()
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		m.ctl.OpenSearch("", false)
		return m, m.sync()

	case key.Matches(msg, m.keys.MainPage):
		return m, m.navigate(page.MainPage(m.env.Config.Site()), nav.FromMainPage)

	case key.Matches(msg, m.keys.Random):
		m.r.statusBar.SetMessage("Finding a random article...")
		return m, m.randomCmd()

	case key.Matches(msg, m.keys.Reload):
		if err := m.ctl.Reload(); err != nil {
			m.r.statusBar.SetError(err.Error())
		}
		return m, m.sync()

	case key.Matches(msg, m.keys.Open):
		if top, ok := m.ctl.Top(); ok && top.IsPage() {
			m.r.statusBar.SetMessage("Opening " + top.Title.String() + " in your browser")
			return m, openBrowser(top.Title.URL())
		}
		return m, nil

	case key.Matches(msg, m.keys.History):
		return m, m.showScreen(nav.ScreenHistory)

	case key.Matches(msg, m.keys.Saved):
		return m, m.showScreen(nav.ScreenSaved)

	case key.Matches(msg, m.keys.SavePage):
		return m, m.savePage()

	case key.Matches(msg, m.keys.Contents):
		if m.r.page == nil {
			return m, nil
		}
		m.r.contents.Toggle()
		m.layout()
		return m, m.refresh()

	case s == "]" || s == "[":
		if m.r.contents.IsVisible() {
			if s == "]" {
				m.r.contents.CursorDown()
			} else {
				m.r.contents.CursorUp()
			}
		}
		return m, nil

	case s == "enter":
		return m, m.jumpToSection()

	case key.Matches(msg, m.keys.CommandMode):
		cmd := m.commandBar.Open(ui.CommandEx)
		m.layout()
		m.syncStatusBar()
		return m, cmd

	case key.Matches(msg, m.keys.Find):
		if m.r.page == nil {
			return m, nil
		}
		cmd := m.commandBar.Open(ui.CommandFind)
		m.layout()
		m.syncStatusBar()
		return m, cmd

	case key.Matches(msg, m.keys.FindNext):
		m.r.viewport.FindNext(1)
		m.syncStatusBar()
		return m, nil

	case key.Matches(msg, m.keys.FindPrev):
		m.r.viewport.FindNext(-1)
		m.syncStatusBar()
		return m, nil

	case key.Matches(msg, m.keys.Menu):
		m.ctl.OpenDrawer()
		return m, m.sync()

	case key.Matches(msg, m.keys.Select):
		if m.r.page == nil {
			return m, nil
		}
		m.ctl.StartActionMode()
		m.r.statusBar.SetMessage("y copies the page link, Esc leaves")
		return m, m.sync()

	case key.Matches(msg, m.keys.Theme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.Larger):
		return m.setTextSize(m.r.textSize + 1)

	case key.Matches(msg, m.keys.Smaller):
		return m.setTextSize(m.r.textSize - 1)

	case key.Matches(msg, m.keys.Help):
		m.showHelp()
		return m, nil
	}
	return m, nil
}

// jumpToSection scrolls to the section selected in the contents pane.
func (m *Model) jumpToSection() tea.Cmd {
	if !m.r.contents.IsVisible() {
		return nil
	}
	sec, ok := m.r.contents.Selected()
	top, isTop := m.ctl.Top()
	if !ok || !isTop || !top.IsPage() {
		return nil
	}
	return m.navigate(top.Title.WithFragment(sec.ID), nav.FromInternalLink)
}

// handleListMode processes keys on the history and saved screens.
func (m Model) handleListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lp := m.r.list()

	if msg.String() != "g" {
		lp.ResetGKey()
	}
	switch {
	case key.Matches(msg, m.keys.ScrollDown):
		lp.CursorDown()
	case key.Matches(msg, m.keys.ScrollUp):
		lp.CursorUp()
	case key.Matches(msg, m.keys.HalfPageDown):
		lp.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		lp.HalfPageUp()
	case key.Matches(msg, m.keys.GotoTop):
		lp.HandleGKey()
	case key.Matches(msg, m.keys.GotoBottom):
		lp.GotoBottom()

	case msg.String() == "enter":
		item, ok := lp.Selected()
		if !ok {
			return m, nil
		}
		p := nav.FromHistory
		if m.r.screen == nav.ScreenSaved {
			p = nav.FromSaved
		}
		return m, m.navigate(item.Title, p)

	case msg.String() == "d" || msg.String() == "x":
		return m, m.removeSelected(lp)

	default:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

// removeSelected deletes the selected history entry or saved page.
func (m *Model) removeSelected(lp *ui.ListPanel) tea.Cmd {
	item, ok := lp.Selected()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
	defer cancel()

	var err error
	if m.r.screen == nav.ScreenSaved {
		err = m.env.Saved.Remove(ctx, item.Title.Key())
	} else {
		err = m.env.History.Remove(ctx, item.ID)
	}
	if err != nil {
		m.r.statusBar.SetError("Remove failed: " + err.Error())
		return nil
	}
	lp.RemoveSelected()
	m.r.statusBar.SetMessage("Removed " + item.Title.Text)
	return nil
}

// handleDrawerMode runs the drawer entry for the key pressed.
func (m Model) handleDrawerMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Menu):
		m.ctl.CloseDrawer()
		return m, m.sync()
	case key.Matches(msg, m.keys.Back) && msg.String() != "b":
		return m.goBack()
	}
	if _, ok := m.drawer.Lookup(msg.String()); !ok {
		return m, nil
	}
	m.ctl.CloseDrawer()
	cmd := m.sync()
	next, run := m.handleNormalMode(msg)
	return next, tea.Batch(cmd, run)
}

// handleSelectMode processes keys while action mode is active.
func (m Model) handleSelectMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleScroll(msg) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.goBack()
	case msg.String() == "y":
		m.ctl.FinishActionMode()
		cmd := m.sync()
		if top, ok := m.ctl.Top(); ok && top.IsPage() {
			return m, tea.Batch(cmd, copyToClipboard(top.Title.URL()))
		}
		return m, cmd
	}
	return m, nil
}

// handleHelpMode scrolls the help overlay; any other key closes it.
func (m Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ScrollDown):
		m.help.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.help.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.help.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.help.HalfPageUp()
	default:
		m.helpVisible = false
		m.syncStatusBar()
	}
	return m, nil
}

// handleCommandMode processes keys while the command bar is open.
func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandBar.Close()
		m.layout()
		m.syncStatusBar()
		return m, nil

	case tea.KeyEnter:
		result := m.commandBar.Submit()
		m.layout()
		m.syncStatusBar()
		return m.handleCommandResult(result)
	}

	cb, cmd := m.commandBar.Update(msg)
	m.commandBar = *cb
	if m.commandBar.Type() == ui.CommandFind {
		// Find as you type.
		m.r.viewport.Find(m.commandBar.Value())
		m.syncStatusBar()
	}
	return m, cmd
}

// handleCommandResult processes a submitted command.
func (m Model) handleCommandResult(result ui.CommandResult) (tea.Model, tea.Cmd) {
	switch result.Type {
	case ui.CommandEx:
		return m.executeCommand(result.Value)
	case ui.CommandFind:
		if m.r.viewport.Find(result.Value) == 0 && result.Value != "" {
			m.r.statusBar.SetMessage(m.r.viewport.FindInfo())
		}
		m.syncStatusBar()
		return m, nil
	case ui.CommandFollow:
		return m.followLink(result)
	}
	return m, nil
}

// followLink navigates to a link by its number.
func (m Model) followLink(result ui.CommandResult) (tea.Model, tea.Cmd) {
	n, ok := result.Link()
	if !ok {
		if result.Value != "" {
			m.r.statusBar.SetError("Invalid link number: " + result.Value)
		}
		return m, nil
	}
	link, ok := m.r.link(n)
	if !ok {
		m.r.statusBar.SetError(fmt.Sprintf("Link [%d] not found", n))
		return m, nil
	}
	if !link.Internal {
		m.r.statusBar.SetMessage("Opening " + link.Href + " in your browser")
		return m, openBrowser(link.Href)
	}

	p := nav.FromInternalLink
	if m.r.screen == nav.ScreenSearch {
		p = nav.FromSearch
	}
	return m, m.navigate(link.Title, p)
}

// handleSearchMode processes keys in the search overlay.
func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.goBack()

	case tea.KeyEnter:
		query := strings.TrimSpace(m.searchBar.Value())
		if sel, ok := m.searchBar.Selected(); ok {
			m.ctl.CloseSearch()
			cmd := m.sync()
			return m, tea.Batch(cmd, m.navigate(sel.Title, nav.FromSearch))
		}
		if query == "" {
			return m, nil
		}
		m.ctl.CloseSearch()
		cmd := m.sync()
		m.r.statusBar.SetMessage("Searching for " + query + "...")
		return m, tea.Batch(cmd, m.searchCmd(query, true))
	}

	changed, cmd := m.searchBar.Update(msg)
	if changed {
		m.layout()
		return m, tea.Batch(cmd, m.scheduleSearch(m.searchBar.Value()))
	}
	return m, cmd
}

// cycleTheme switches to the next available theme.
func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	next := theme.Next(theme.Current.Name)
	m.env.Bus.Theme.Publish(next)
	m.r.statusBar.SetMessage("Theme: " + next)
	return m, m.refresh()
}

func (m Model) setTextSize(size int) (tea.Model, tea.Cmd) {
	size = min(max(size, config.MinTextSize), config.MaxTextSize)
	if size == m.r.textSize {
		m.r.statusBar.SetMessage(fmt.Sprintf("Text size: %+d (limit)", size))
		return m, nil
	}
	m.env.Bus.TextSize.Publish(size)
	m.r.statusBar.SetMessage(fmt.Sprintf("Text size: %+d", size))
	return m, m.refresh()
}
