package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/theme"
)

// ListItem is a row of the history or saved pages screen.
type ListItem struct {
	ID     int64
	Title  page.Title
	Detail string
	At     time.Time
}

// ListPanel displays a scrollable list of pages with vim navigation. It
// backs the history and saved pages screens.
type ListPanel struct {
	heading  string
	empty    string
	items    []ListItem
	cursor   int
	offset   int // scroll offset for visible window
	width    int
	height   int
	lastGKey bool // for gg detection within the panel
	now      func() time.Time
}

// NewListPanel creates a list with a heading and the text shown when it
// is empty.
func NewListPanel(heading, empty string) ListPanel {
	return ListPanel{heading: heading, empty: empty, now: time.Now}
}

// SetItems replaces the rows and moves the cursor to the top.
func (lp *ListPanel) SetItems(items []ListItem) {
	lp.items = items
	lp.cursor = 0
	lp.offset = 0
	lp.lastGKey = false
}

// Items returns the rows.
func (lp *ListPanel) Items() []ListItem {
	return lp.items
}

// SetSize updates the panel dimensions.
func (lp *ListPanel) SetSize(w, h int) {
	lp.width = w
	lp.height = h
	lp.ensureVisible()
}

// CursorUp moves the cursor up one row.
func (lp *ListPanel) CursorUp() {
	lp.lastGKey = false
	if lp.cursor > 0 {
		lp.cursor--
		lp.ensureVisible()
	}
}

// CursorDown moves the cursor down one row.
func (lp *ListPanel) CursorDown() {
	lp.lastGKey = false
	if lp.cursor < len(lp.items)-1 {
		lp.cursor++
		lp.ensureVisible()
	}
}

// GotoTop moves to the first row.
func (lp *ListPanel) GotoTop() {
	lp.lastGKey = false
	lp.cursor = 0
	lp.offset = 0
}

// GotoBottom moves to the last row.
func (lp *ListPanel) GotoBottom() {
	lp.lastGKey = false
	if len(lp.items) > 0 {
		lp.cursor = len(lp.items) - 1
		lp.ensureVisible()
	}
}

// HalfPageDown moves the cursor down half a page.
func (lp *ListPanel) HalfPageDown() {
	lp.lastGKey = false
	lp.cursor = max(min(lp.cursor+lp.visibleCount()/2, len(lp.items)-1), 0)
	lp.ensureVisible()
}

// HalfPageUp moves the cursor up half a page.
func (lp *ListPanel) HalfPageUp() {
	lp.lastGKey = false
	lp.cursor = max(lp.cursor-lp.visibleCount()/2, 0)
	lp.ensureVisible()
}

// HandleGKey handles the "g" key and reports whether "gg" completed.
func (lp *ListPanel) HandleGKey() bool {
	if lp.lastGKey {
		lp.GotoTop()
		return true
	}
	lp.lastGKey = true
	return false
}

// ResetGKey resets the g key state (called on any non-g key press).
func (lp *ListPanel) ResetGKey() {
	lp.lastGKey = false
}

// Selected returns the row at the cursor.
func (lp *ListPanel) Selected() (ListItem, bool) {
	if lp.cursor < 0 || lp.cursor >= len(lp.items) {
		return ListItem{}, false
	}
	return lp.items[lp.cursor], true
}

// Cursor returns the cursor index.
func (lp *ListPanel) Cursor() int {
	return lp.cursor
}

// RemoveSelected removes the row at the cursor.
func (lp *ListPanel) RemoveSelected() {
	if lp.cursor < 0 || lp.cursor >= len(lp.items) {
		return
	}
	lp.items = append(lp.items[:lp.cursor], lp.items[lp.cursor+1:]...)
	if lp.cursor >= len(lp.items) && lp.cursor > 0 {
		lp.cursor--
	}
	lp.ensureVisible()
}

// visibleCount returns how many rows fit: three header lines, two lines
// per row.
func (lp *ListPanel) visibleCount() int {
	return max((lp.height-3)/2, 1)
}

func (lp *ListPanel) ensureVisible() {
	visible := lp.visibleCount()
	if lp.cursor < lp.offset {
		lp.offset = lp.cursor
	}
	if lp.cursor >= lp.offset+visible {
		lp.offset = lp.cursor - visible + 1
	}
	lp.offset = max(lp.offset, 0)
}

// View renders the list.
func (lp *ListPanel) View() string {
	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(lp.width).
		Height(lp.height)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Heading).
		Background(t.Surface).
		Width(lp.width).
		Padding(0, 1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Primary).
		Bold(true).
		Width(lp.width).
		Padding(0, 1)

	selectedDetailStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Primary).
		Width(lp.width).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Foreground(t.Link).
		Width(lp.width).
		Padding(0, 1)

	detailStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Width(lp.width).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", lp.heading, len(lp.items))))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", max(lp.width-2, 1))))
	sb.WriteString("\n")

	if len(lp.items) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Padding(0, 1).Render(lp.empty))
		sb.WriteString("\n")
		return panelStyle.Render(sb.String())
	}

	end := min(lp.offset+lp.visibleCount(), len(lp.items))
	room := max(lp.width-4, 10)
	for i := lp.offset; i < end; i++ {
		item := lp.items[i]
		title := ansi.Truncate(item.Title.String(), room, "...")
		detail := lp.detail(item)

		if i == lp.cursor {
			sb.WriteString(selectedStyle.Render("▸ " + title))
			sb.WriteString("\n")
			sb.WriteString(selectedDetailStyle.Render("  " + ansi.Truncate(detail, room, "...")))
		} else {
			sb.WriteString(normalStyle.Render("  " + title))
			sb.WriteString("\n")
			sb.WriteString(detailStyle.Render("  " + ansi.Truncate(detail, room, "...")))
		}
		sb.WriteString("\n")
	}

	linesUsed := 2 + (end-lp.offset)*2
	if remaining := lp.height - linesUsed; remaining > 1 {
		sb.WriteString(strings.Repeat("\n", remaining-1))
		sb.WriteString(lipgloss.NewStyle().
			Foreground(t.TextDim).
			Italic(true).
			Padding(0, 1).
			Render("j/k:move  Enter:open  d:delete  Esc:back"))
	}

	return panelStyle.Render(sb.String())
}

func (lp *ListPanel) detail(item ListItem) string {
	parts := []string{}
	if item.Title.Site != page.DefaultSite {
		parts = append(parts, item.Title.Language())
	}
	if item.Detail != "" {
		parts = append(parts, item.Detail)
	}
	if !item.At.IsZero() {
		parts = append(parts, TimeAgo(lp.now(), item.At))
	}
	return strings.Join(parts, "  ")
}

// TimeAgo returns a human-readable relative time.
func TimeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
