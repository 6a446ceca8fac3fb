package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/wiki"
)

// DefaultSearchHint is the placeholder of the search bar.
const DefaultSearchHint = "Search Wikipedia"

// SearchBar is the search overlay: a query input with title suggestions
// underneath.
type SearchBar struct {
	input   textinput.Model
	active  bool
	width   int
	results []wiki.SearchResult
	cursor  int
	query   string // query the results belong to
}

// NewSearchBar creates a new search bar.
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = DefaultSearchHint
	ti.CharLimit = 255 // longest MediaWiki title
	ti.Width = 60

	return SearchBar{input: ti}
}

// SetWidth updates the search bar width.
func (s *SearchBar) SetWidth(w int) {
	s.width = w
	s.input.Width = w - 8 // account for prompt and padding
}

// SetHint replaces the placeholder, for example with the zero-rated
// carrier hint.
func (s *SearchBar) SetHint(hint string) {
	if hint == "" {
		hint = DefaultSearchHint
	}
	s.input.Placeholder = hint
}

// Open shows the bar prefilled with query.
func (s *SearchBar) Open(query string) tea.Cmd {
	s.active = true
	if query != s.input.Value() {
		s.input.SetValue(query)
		s.input.CursorEnd()
		s.results, s.cursor, s.query = nil, 0, ""
	}
	return s.input.Focus()
}

// Close hides the bar and forgets the query.
func (s *SearchBar) Close() {
	s.active = false
	s.input.Blur()
	s.input.Reset()
	s.results, s.cursor, s.query = nil, 0, ""
}

// IsActive reports whether the bar is shown.
func (s *SearchBar) IsActive() bool {
	return s.active
}

// Value returns the current query.
func (s *SearchBar) Value() string {
	return s.input.Value()
}

// SetResults shows suggestions for query. Results for a query that is no
// longer typed are ignored.
func (s *SearchBar) SetResults(query string, results []wiki.SearchResult) bool {
	if strings.TrimSpace(query) != strings.TrimSpace(s.input.Value()) {
		return false
	}
	s.results, s.cursor, s.query = results, 0, query
	return true
}

// Results returns the suggestions shown.
func (s *SearchBar) Results() []wiki.SearchResult {
	return s.results
}

// Selected returns the highlighted suggestion.
func (s *SearchBar) Selected() (wiki.SearchResult, bool) {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return wiki.SearchResult{}, false
	}
	return s.results[s.cursor], true
}

// Update handles messages for the search bar. It reports whether the
// query text changed.
func (s *SearchBar) Update(msg tea.Msg) (bool, tea.Cmd) {
	if !s.active {
		return false, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp, tea.KeyCtrlP:
			if s.cursor > 0 {
				s.cursor--
			}
			return false, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			if s.cursor < len(s.results)-1 {
				s.cursor++
			}
			return false, nil
		}
	}
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s.input.Value() != before, cmd
}

// View renders the bar and its suggestions.
func (s *SearchBar) View() string {
	t := theme.Current

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(max(s.width-2, 10))

	promptStyle := lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	var sb strings.Builder
	sb.WriteString(barStyle.Render(promptStyle.Render("W") + " " + s.input.View()))

	if len(s.results) == 0 {
		if s.query != "" {
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Padding(0, 2).Render("No results"))
		}
		return sb.String()
	}

	selected := lipgloss.NewStyle().Foreground(t.Background).Background(t.Primary).Bold(true)
	normal := lipgloss.NewStyle().Foreground(t.Text)
	desc := lipgloss.NewStyle().Foreground(t.TextDim)
	for i, r := range s.results {
		line := fmt.Sprintf("%2d  %s", i+1, r.Title.Text)
		style := normal
		if i == s.cursor {
			style = selected
		}
		sb.WriteString("\n  ")
		sb.WriteString(style.Render(line))
		if r.Description != "" {
			room := s.width - lipgloss.Width(line) - 6
			if room > 10 {
				sb.WriteString(desc.Render("  " + ansi.Truncate(r.Description, room, "...")))
			}
		}
	}
	return sb.String()
}
