package app

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/wiki"
)

const (
	searchDebounce = 250 * time.Millisecond
	searchTimeout  = 10 * time.Second
	fullSearchSize = 30
)

// searchTickMsg fires when typing in the search bar pauses.
type searchTickMsg struct {
	seq   int
	query string
}

// searchResultsMsg carries title suggestions, or the results of a
// submitted search when full is set.
type searchResultsMsg struct {
	query   string
	results []wiki.SearchResult
	full    bool
	err     error
}

// randomMsg carries the title of a random article.
type randomMsg struct {
	title page.Title
	err   error
}

// statusMsg reports the outcome of a background action.
type statusMsg struct {
	text string
	err  error
}

// scheduleSearch asks for suggestions once typing pauses.
func (m *Model) scheduleSearch(query string) tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, query: query}
	})
}

func (m Model) handleSearchTick(msg searchTickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.searchSeq || !m.searchBar.IsActive() {
		return m, nil
	}
	if strings.TrimSpace(msg.query) == "" {
		m.searchBar.SetResults(msg.query, nil)
		m.layout()
		return m, nil
	}
	return m, m.searchCmd(msg.query, false)
}

// searchCmd runs a title search off the update loop.
func (m *Model) searchCmd(query string, full bool) tea.Cmd {
	searcher := m.env.Search
	site := m.env.Config.Site()
	ctx := m.ctx
	limit := wiki.DefaultSearchLimit
	if full {
		limit = fullSearchSize
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, searchTimeout)
		defer cancel()
		results, err := searcher.Search(ctx, site, query, limit)
		return searchResultsMsg{query: query, results: results, full: full, err: err}
	}
}

func (m Model) handleSearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.env.Log.Warn("search failed", "query", msg.query, "error", msg.err)
		m.r.statusBar.SetError("Search failed: " + msg.err.Error())
		return m, nil
	}
	if !msg.full {
		if m.searchBar.IsActive() && m.searchBar.SetResults(msg.query, msg.results) {
			m.layout()
		}
		return m, nil
	}
	m.r.query, m.r.results = msg.query, msg.results
	m.r.statusBar.SetMessage(fmt.Sprintf("%d results for %q", len(msg.results), msg.query))
	return m, m.showScreen(nav.ScreenSearch)
}

// randomCmd picks a random article off the update loop.
func (m *Model) randomCmd() tea.Cmd {
	searcher := m.env.Search
	site := m.env.Config.Site()
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, searchTimeout)
		defer cancel()
		t, err := searcher.Random(ctx, site)
		return randomMsg{title: t, err: err}
	}
}

// savePage stores the article shown for offline reading.
func (m *Model) savePage() tea.Cmd {
	if m.r.page == nil {
		m.r.statusBar.SetMessage("Nothing to save here")
		return nil
	}
	a := m.r.page.Article
	saved := m.env.Saved
	ctx := m.ctx
	doc := a.Document()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		if err := saved.Save(ctx, a.Title, doc, time.Now()); err != nil {
			return statusMsg{text: "Saving " + a.DisplayTitle, err: err}
		}
		return statusMsg{text: "Saved " + a.DisplayTitle + " for offline reading"}
	}
}

// openBrowser hands url to the desktop's browser.
func openBrowser(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Start(); err != nil {
			return statusMsg{text: "Cannot open " + url, err: err}
		}
		go cmd.Wait() //nolint:errcheck // reap the launcher
		return nil
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{text: "Copy failed", err: err}
		}
		return statusMsg{text: "Copied " + text}
	}
}

// executeCommand handles :commands.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.Join(parts[1:], " ")

	switch parts[0] {
	case "q", "quit":
		return m.quit()

	case "o", "open":
		if arg == "" {
			m.r.statusBar.SetMessage("Usage: :open <title or url>")
			return m, nil
		}
		in := nav.Intent{Kind: nav.IntentSearch, Query: arg}
		if strings.Contains(arg, "://") {
			in = nav.Intent{Kind: nav.IntentView, URI: arg}
		}
		if err := m.ctl.HandleIntent(in); err != nil {
			m.r.statusBar.SetError(fmt.Sprintf("Cannot open %q: %s", arg, err))
		}
		return m, m.sync()

	case "search":
		if arg == "" {
			m.ctl.OpenSearch("", false)
			return m, m.sync()
		}
		m.r.statusBar.SetMessage("Searching for " + arg + "...")
		return m, m.searchCmd(arg, true)

	case "home":
		if err := m.ctl.Reset(); err != nil {
			m.r.statusBar.SetError(err.Error())
		}
		return m, m.sync()

	case "random":
		return m, m.randomCmd()

	case "reload":
		if err := m.ctl.Reload(); err != nil {
			m.r.statusBar.SetError(err.Error())
		}
		return m, m.sync()

	case "lang", "language":
		return m.setLanguage(arg)

	case "theme":
		if arg == "" {
			m.r.statusBar.SetMessage(fmt.Sprintf("Current: %s | Available: %s", theme.Current.Name, strings.Join(theme.List(), ", ")))
			return m, nil
		}
		if !theme.Has(arg) {
			m.r.statusBar.SetError(fmt.Sprintf("Unknown theme: %s (available: %s)", arg, strings.Join(theme.List(), ", ")))
			return m, nil
		}
		m.env.Bus.Theme.Publish(arg)
		m.r.statusBar.SetMessage("Theme: " + arg)
		return m, m.refresh()

	case "textsize":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.r.statusBar.SetMessage(fmt.Sprintf("Text size: %+d", m.r.textSize))
			return m, nil
		}
		return m.setTextSize(n)

	case "history":
		return m, m.showScreen(nav.ScreenHistory)

	case "clearhistory":
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()
		if err := m.env.History.Clear(ctx); err != nil {
			m.r.statusBar.SetError("Clearing history: " + err.Error())
			return m, nil
		}
		m.r.statusBar.SetMessage("History cleared")
		if m.r.screen == nav.ScreenHistory {
			return m, m.refresh()
		}
		return m, nil

	case "saved":
		return m, m.showScreen(nav.ScreenSaved)

	case "save":
		return m, m.savePage()

	case "unsave":
		if m.r.page == nil {
			return m, nil
		}
		a := m.r.page.Article
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()
		if err := m.env.Saved.Remove(ctx, a.Title.Key()); err != nil {
			m.r.statusBar.SetError(err.Error())
			return m, nil
		}
		m.r.statusBar.SetMessage("Removed the saved copy of " + a.DisplayTitle)
		return m, nil

	case "cache":
		if m.env.Cache == nil {
			return m, nil
		}
		st := m.env.Cache.Stats()
		m.r.statusBar.SetMessage(fmt.Sprintf("Cache: %d pages, %d/%d KiB, %d hits, %d misses, %d evicted",
			st.Entries, st.Cost/1024, st.Capacity/1024, st.Hits, st.Misses, st.Evictions))
		return m, nil

	case "help":
		m.showHelp()
		return m, nil
	}

	m.r.statusBar.SetError("Unknown command: " + parts[0])
	return m, nil
}

// setLanguage switches the primary wiki and starts over at its main page.
func (m Model) setLanguage(lang string) (tea.Model, tea.Cmd) {
	cfg := m.env.Config
	if lang == "" {
		m.r.statusBar.SetMessage("Language: " + cfg.Language)
		return m, nil
	}
	prev := cfg.Language
	cfg.Language = strings.ToLower(lang)
	if err := cfg.Validate(); err != nil {
		cfg.Language = prev
		m.r.statusBar.SetError(err.Error())
		return m, nil
	}
	saveConfig(m.env)

	site := cfg.Site()
	m.r.statusBar.SetLanguage(page.SiteLanguage(site))
	m.drawer.SetLanguage(page.SiteLanguage(site))
	if err := m.ctl.Reset(); err != nil {
		m.r.statusBar.SetError(err.Error())
	}
	return m, m.sync()
}

// showHelp fills the help overlay with the keybinding reference.
func (m *Model) showHelp() {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary).
		Width(18)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("wikisurf Keybindings"))
	sb.WriteString("\n\n")

	sections := []struct {
		name string
		keys []struct{ k, d string }
	}{
		{"Reading", []struct{ k, d string }{
			{"j / k", "Scroll down / up"},
			{"Ctrl+d / Ctrl+u", "Half page down / up"},
			{"gg / G", "Top / bottom"},
			{"t", "Contents pane"},
			{"[ / ]  Enter", "Pick a section, jump to it"},
			{"/  n  N", "Find in page, next, previous"},
			{"+ / -", "Larger / smaller text"},
			{"T", "Next theme"},
		}},
		{"Navigation", []struct{ k, d string }{
			{"f  or  1-9", "Follow link by number"},
			{"Esc / b", "Back"},
			{"s", "Search Wikipedia"},
			{"h", "Main page"},
			{"r", "Random article"},
			{"R", "Reload"},
			{"o", "Open in browser"},
			{"v  then  y", "Copy the page link"},
			{"m", "Menu"},
		}},
		{"Library", []struct{ k, d string }{
			{"H", "History"},
			{"S", "Saved pages"},
			{"w", "Save page for offline reading"},
			{"Enter  d", "Open, remove (in lists)"},
		}},
		{"Commands", []struct{ k, d string }{
			{":open <title>", "Open a title or URL"},
			{":search <q>", "Full search results"},
			{":lang <code>", "Switch Wikipedia language"},
			{":theme <name>", "Change theme"},
			{":textsize <n>", "Set text size (-3..3)"},
			{":home", "Start over at the main page"},
			{":save  :unsave", "Keep or drop an offline copy"},
			{":clearhistory", "Clear all history"},
			{":cache", "Page cache statistics"},
			{":quit", "Quit wikisurf"},
		}},
	}

	for _, section := range sections {
		sb.WriteString(sectionStyle.Render(section.name))
		sb.WriteString("\n")
		for _, binding := range section.keys {
			sb.WriteString(keyStyle.Render(binding.k))
			sb.WriteString(descStyle.Render(binding.d))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	m.help.SetContent(sb.String())
	m.helpVisible = true
	m.syncStatusBar()
}
