package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/theme"
)

// Binding is a key and what it does.
type Binding struct {
	Key  string
	Desc string
}

// DrawerGroup is a named group of drawer entries.
type DrawerGroup struct {
	Name     string
	Bindings []Binding
}

// Drawer is the navigation menu popup. Pressing one of its keys runs the
// entry; Esc or back closes it.
type Drawer struct {
	width    int
	height   int
	language string
	groups   []DrawerGroup
}

// NewDrawer creates a drawer with the default entries.
func NewDrawer() Drawer {
	return Drawer{groups: DefaultDrawerGroups()}
}

// DefaultDrawerGroups returns the built-in drawer entries.
func DefaultDrawerGroups() []DrawerGroup {
	return []DrawerGroup{
		{
			Name: "Explore",
			Bindings: []Binding{
				{Key: "h", Desc: "Main page"},
				{Key: "r", Desc: "Random article"},
				{Key: "s", Desc: "Search"},
				{Key: "b", Desc: "Back"},
			},
		},
		{
			Name: "Library",
			Bindings: []Binding{
				{Key: "H", Desc: "History"},
				{Key: "S", Desc: "Saved pages"},
				{Key: "w", Desc: "Save page"},
			},
		},
		{
			Name: "Page",
			Bindings: []Binding{
				{Key: "t", Desc: "Contents"},
				{Key: "/", Desc: "Find in page"},
				{Key: "R", Desc: "Reload"},
				{Key: "o", Desc: "Open in browser"},
			},
		},
		{
			Name: "Display",
			Bindings: []Binding{
				{Key: "T", Desc: "Next theme"},
				{Key: "+", Desc: "Larger text"},
				{Key: "-", Desc: "Smaller text"},
				{Key: "?", Desc: "Help"},
			},
		},
	}
}

// Lookup returns the drawer entry bound to key.
func (d *Drawer) Lookup(key string) (Binding, bool) {
	for _, g := range d.groups {
		for _, b := range g.Bindings {
			if b.Key == key {
				return b, true
			}
		}
	}
	return Binding{}, false
}

// SetSize sets the available area for rendering.
func (d *Drawer) SetSize(w, h int) {
	d.width = w
	d.height = h
}

// SetLanguage sets the language shown in the drawer header.
func (d *Drawer) SetLanguage(lang string) {
	d.language = lang
}

// View renders the drawer as a centered popup.
func (d *Drawer) View() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Heading)

	groupNameStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Underline(true)

	keyBadgeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Background).
		Background(t.Secondary).
		Padding(0, 1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Italic(true)

	separatorStyle := lipgloss.NewStyle().
		Foreground(t.Border)

	const colWidth = 20

	maxRows := 0
	for _, g := range d.groups {
		maxRows = max(maxRows, len(g.Bindings))
	}

	colStyle := lipgloss.NewStyle().Width(colWidth)

	var columns []string
	for i, group := range d.groups {
		lines := []string{groupNameStyle.Render(group.Name), ""}
		for _, b := range group.Bindings {
			lines = append(lines, keyBadgeStyle.Render(fmt.Sprintf("%-1s", b.Key))+descStyle.Render(" "+b.Desc))
		}
		for j := len(group.Bindings); j < maxRows; j++ {
			lines = append(lines, "")
		}

		col := colStyle.Render(strings.Join(lines, "\n"))
		columns = append(columns, col)

		if i < len(d.groups)-1 {
			sep := make([]string, lipgloss.Height(col))
			for s := range sep {
				sep[s] = separatorStyle.Render(" │ ")
			}
			columns = append(columns, strings.Join(sep, "\n"))
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	bodyWidth := lipgloss.Width(body)

	header := "Wikipedia"
	if d.language != "" {
		header += " (" + d.language + ")"
	}
	rule := separatorStyle.Render(strings.Repeat("─", bodyWidth))

	footer := dimStyle.Render("press a key, or Esc to close")
	footerPad := ""
	if fw := lipgloss.Width(footer); fw < bodyWidth {
		footerPad = strings.Repeat(" ", (bodyWidth-fw)/2)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(header),
		rule,
		"",
		body,
		"",
		rule,
		footerPad+footer,
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(content)
}
