package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/theme"
)

// PageViewport wraps bubbles/viewport with find-in-page and scroll info.
type PageViewport struct {
	viewport   viewport.Model
	ready      bool
	content    string
	lines      []string
	contentSet bool

	findTerm string
	matches  []int // line numbers
	match    int
}

// NewPageViewport creates a new viewport (dimensions set on first WindowSizeMsg).
func NewPageViewport() PageViewport {
	return PageViewport{}
}

// SetSize updates the viewport dimensions.
func (pv *PageViewport) SetSize(width, height int) {
	if !pv.ready {
		pv.viewport = viewport.New(width, height)
		pv.viewport.MouseWheelEnabled = true
		pv.viewport.MouseWheelDelta = 3
		pv.ready = true
		if pv.contentSet {
			pv.viewport.SetContent(pv.content)
		}
	} else {
		pv.viewport.Width = width
		pv.viewport.Height = height
	}
}

// SetContent replaces the content and scrolls to the top.
func (pv *PageViewport) SetContent(content string) {
	pv.setContent(content)
	if pv.ready {
		pv.viewport.GotoTop()
	}
}

// ReplaceContent swaps the content keeping the scroll position, for
// redraws of the same page.
func (pv *PageViewport) ReplaceContent(content string) {
	offset := pv.YOffset()
	pv.setContent(content)
	pv.GotoLine(offset)
}

func (pv *PageViewport) setContent(content string) {
	pv.content = content
	pv.lines = strings.Split(content, "\n")
	pv.contentSet = true
	pv.findTerm, pv.matches, pv.match = "", nil, 0
	if pv.ready {
		pv.viewport.SetContent(content)
	}
}

// Update forwards messages to the viewport.
func (pv *PageViewport) Update(msg tea.Msg) (*PageViewport, tea.Cmd) {
	if !pv.ready {
		return pv, nil
	}
	var cmd tea.Cmd
	pv.viewport, cmd = pv.viewport.Update(msg)
	return pv, cmd
}

// View renders the viewport.
func (pv *PageViewport) View() string {
	if !pv.ready {
		return "\n  Initializing..."
	}
	if !pv.contentSet {
		return renderWelcome()
	}
	return pv.viewport.View()
}

// Find searches the content for term, case-insensitively, and jumps to
// the first match. It returns the number of matching lines.
func (pv *PageViewport) Find(term string) int {
	pv.findTerm = strings.TrimSpace(term)
	pv.matches, pv.match = nil, 0
	if pv.findTerm == "" {
		return 0
	}
	needle := strings.ToLower(pv.findTerm)
	for i, line := range pv.lines {
		if strings.Contains(strings.ToLower(ansi.Strip(line)), needle) {
			pv.matches = append(pv.matches, i)
		}
	}
	if len(pv.matches) > 0 {
		pv.GotoLine(pv.matches[0])
	}
	return len(pv.matches)
}

// FindNext moves to the next match, wrapping around. delta is 1 or -1.
func (pv *PageViewport) FindNext(delta int) {
	if len(pv.matches) == 0 {
		return
	}
	pv.match = (pv.match + delta + len(pv.matches)) % len(pv.matches)
	pv.GotoLine(pv.matches[pv.match])
}

// ClearFind drops the current find term.
func (pv *PageViewport) ClearFind() {
	pv.findTerm, pv.matches, pv.match = "", nil, 0
}

// Finding reports whether a find term is active.
func (pv *PageViewport) Finding() bool {
	return pv.findTerm != ""
}

// FindInfo returns "2/7" style match info, or "" when not finding.
func (pv *PageViewport) FindInfo() string {
	if pv.findTerm == "" {
		return ""
	}
	if len(pv.matches) == 0 {
		return fmt.Sprintf("%q: no matches", pv.findTerm)
	}
	return fmt.Sprintf("%q: %d/%d", pv.findTerm, pv.match+1, len(pv.matches))
}

// ScrollPercent returns the scroll percentage.
func (pv *PageViewport) ScrollPercent() float64 {
	if !pv.ready {
		return 0
	}
	return pv.viewport.ScrollPercent()
}

// ScrollInfo returns a string like "42%" or "TOP" or "BOT".
func (pv *PageViewport) ScrollInfo() string {
	pct := pv.ScrollPercent()
	switch {
	case pct <= 0:
		return "TOP"
	case pct >= 1:
		return "BOT"
	default:
		return fmt.Sprintf("%d%%", int(pct*100))
	}
}

// GotoLine scrolls so that line n is at the top.
func (pv *PageViewport) GotoLine(n int) {
	if pv.ready {
		pv.viewport.SetYOffset(n)
	}
}

// YOffset returns the first visible line.
func (pv *PageViewport) YOffset() int {
	if !pv.ready {
		return 0
	}
	return pv.viewport.YOffset
}

// HalfPageDown scrolls down half a page.
func (pv *PageViewport) HalfPageDown() {
	if pv.ready {
		pv.viewport.HalfViewDown()
	}
}

// HalfPageUp scrolls up half a page.
func (pv *PageViewport) HalfPageUp() {
	if pv.ready {
		pv.viewport.HalfViewUp()
	}
}

// LineDown scrolls down n lines.
func (pv *PageViewport) LineDown(n int) {
	if pv.ready {
		pv.viewport.LineDown(n)
	}
}

// LineUp scrolls up n lines.
func (pv *PageViewport) LineUp(n int) {
	if pv.ready {
		pv.viewport.LineUp(n)
	}
}

// GotoTop scrolls to the top.
func (pv *PageViewport) GotoTop() {
	if pv.ready {
		pv.viewport.GotoTop()
	}
}

// GotoBottom scrolls to the bottom.
func (pv *PageViewport) GotoBottom() {
	if pv.ready {
		pv.viewport.GotoBottom()
	}
}

// Ready reports whether the viewport has been initialized.
func (pv *PageViewport) Ready() bool {
	return pv.ready
}

// Width returns the viewport width.
func (pv *PageViewport) Width() int {
	if !pv.ready {
		return 0
	}
	return pv.viewport.Width
}

// Height returns the viewport height.
func (pv *PageViewport) Height() int {
	if !pv.ready {
		return 0
	}
	return pv.viewport.Height
}

func renderWelcome() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Heading)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	accentStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("  W I K I S U R F"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  The free encyclopedia, in your terminal"))
	sb.WriteString("\n\n")
	sb.WriteString(accentStyle.Render("  Quick Start"))
	sb.WriteString("\n\n")

	for _, b := range QuickStart {
		sb.WriteString(keyStyle.Render(fmt.Sprintf("  %-14s", b.Key)))
		sb.WriteString(descStyle.Render(b.Desc))
		sb.WriteString("\n")
	}
	return sb.String()
}

// QuickStart lists the keys shown on the welcome screen.
var QuickStart = []Binding{
	{Key: "s", Desc: "Search Wikipedia"},
	{Key: "f", Desc: "Follow link by number"},
	{Key: "Esc / b", Desc: "Back"},
	{Key: "j / k", Desc: "Scroll down / up"},
	{Key: "/", Desc: "Find in page"},
	{Key: "t", Desc: "Contents"},
	{Key: "m", Desc: "Menu"},
	{Key: "q", Desc: "Quit"},
}
