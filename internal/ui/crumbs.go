package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/theme"
)

// Crumbs renders the navigation stack as a breadcrumb trail across the
// top of the screen, oldest entry on the left. The last crumb is the page
// being shown.
type Crumbs struct {
	labels     []string
	width      int
	maxVisible int
}

// NewCrumbs creates an empty trail.
func NewCrumbs() Crumbs {
	return Crumbs{maxVisible: 4}
}

// SetWidth sets the bar width.
func (c *Crumbs) SetWidth(w int) {
	c.width = w
	c.maxVisible = min(max(w/24, 2), 8)
}

// SetLabels replaces the trail.
func (c *Crumbs) SetLabels(labels []string) {
	c.labels = labels
}

// Len returns the number of crumbs.
func (c *Crumbs) Len() int {
	return len(c.labels)
}

// Visible returns the index of the first crumb shown: older crumbs fold
// into a "+n" marker so the current page is always visible.
func (c *Crumbs) Visible() int {
	return max(len(c.labels)-c.maxVisible, 0)
}

// View renders the trail.
func (c *Crumbs) View() string {
	t := theme.Current

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)

	separatorStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	start := c.Visible()
	var sb strings.Builder
	if start > 0 {
		sb.WriteString(inactiveStyle.Render(fmt.Sprintf("+%d", start)))
		sb.WriteString(separatorStyle.Render("›"))
	}

	room := max(c.width/max(c.maxVisible, 1)-4, 8)
	last := len(c.labels) - 1
	for i := start; i <= last; i++ {
		label := ansi.Truncate(c.labels[i], room, "...")
		if i == last {
			sb.WriteString(activeStyle.Render(label))
		} else {
			sb.WriteString(inactiveStyle.Render(label))
			sb.WriteString(separatorStyle.Render("›"))
		}
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(c.width).
		Render(sb.String())
}
