package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/wiki"
)

// minContentsWidth is the narrowest the contents pane gets; below twice
// that the pane is not shown.
const minContentsWidth = 24

// ContentsPane is the table of contents shown beside an article. It
// splits the screen vertically: article on the left, sections on the
// right.
type ContentsPane struct {
	Ratio    float64 // share of the width given to the article
	visible  bool
	sections []wiki.Section
	cursor   int
	width    int
	height   int
}

// NewContentsPane creates a hidden pane.
func NewContentsPane() ContentsPane {
	return ContentsPane{Ratio: 0.7}
}

// SetSize updates the split dimensions.
func (cp *ContentsPane) SetSize(w, h int) {
	cp.width = w
	cp.height = h
}

// SetSections replaces the listed sections.
func (cp *ContentsPane) SetSections(s []wiki.Section) {
	cp.sections = s
	cp.cursor = 0
}

// Toggle shows or hides the pane.
func (cp *ContentsPane) Toggle() {
	cp.visible = !cp.visible
}

// Hide closes the pane.
func (cp *ContentsPane) Hide() {
	cp.visible = false
}

// IsVisible reports whether the pane is shown. It never is when the
// screen is too narrow.
func (cp *ContentsPane) IsVisible() bool {
	return cp.visible && cp.width >= 2*minContentsWidth
}

// CursorUp moves the selection up.
func (cp *ContentsPane) CursorUp() {
	if cp.cursor > 0 {
		cp.cursor--
	}
}

// CursorDown moves the selection down.
func (cp *ContentsPane) CursorDown() {
	if cp.cursor < len(cp.sections)-1 {
		cp.cursor++
	}
}

// Selected returns the highlighted section.
func (cp *ContentsPane) Selected() (wiki.Section, bool) {
	if cp.cursor < 0 || cp.cursor >= len(cp.sections) {
		return wiki.Section{}, false
	}
	return cp.sections[cp.cursor], true
}

// ArticleWidth returns the width left for the article.
func (cp *ContentsPane) ArticleWidth() int {
	if !cp.IsVisible() {
		return cp.width
	}
	return cp.width - cp.paneWidth() - 1 // -1 for the divider
}

func (cp *ContentsPane) paneWidth() int {
	return max(cp.width-int(float64(cp.width)*cp.Ratio), minContentsWidth)
}

// Render lays the article and the pane side by side.
func (cp *ContentsPane) Render(article string) string {
	if !cp.IsVisible() {
		return article
	}

	t := theme.Current
	w := cp.paneWidth()

	heading := lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	normal := lipgloss.NewStyle().Foreground(t.Link)
	selected := lipgloss.NewStyle().Foreground(t.Background).Background(t.Primary).Bold(true)

	var sb strings.Builder
	sb.WriteString(heading.Render("Contents"))
	sb.WriteString("\n\n")
	if len(cp.sections) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("No sections"))
	}

	// Keep the cursor on screen.
	rows := max(cp.height-2, 1)
	start := max(cp.cursor-rows+1, 0)
	end := min(start+rows, len(cp.sections))
	for i := start; i < end; i++ {
		s := cp.sections[i]
		indent := strings.Repeat("  ", max(s.Level-2, 0))
		label := ansi.Truncate(indent+s.Title, w-2, "...")
		if i == cp.cursor {
			sb.WriteString(selected.Render(label))
		} else {
			sb.WriteString(normal.Render(label))
		}
		sb.WriteString("\n")
	}

	divider := lipgloss.NewStyle().
		Foreground(t.Border).
		Render(strings.TrimSuffix(strings.Repeat("│\n", cp.height), "\n"))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(cp.ArticleWidth()).Height(cp.height).Render(article),
		divider,
		lipgloss.NewStyle().Width(w).Height(cp.height).Padding(0, 1).Render(sb.String()),
	)
}
