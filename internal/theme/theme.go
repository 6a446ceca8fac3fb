package theme

import (
	"sort"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the reading palette.
type Theme struct {
	Name string

	// Glamour is the standard glamour style used for article bodies.
	Glamour string

	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	Text    lipgloss.Color
	TextDim lipgloss.Color

	// UI element colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Link      lipgloss.Color
	LinkIndex lipgloss.Color
	Heading   lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color
}

var themes = map[string]Theme{
	"light": Light,
	"dark":  Dark,
	"black": Black,
	"sepia": Sepia,
}

var Light = Theme{
	Name:       "light",
	Glamour:    styles.LightStyle,
	Primary:    lipgloss.Color("#3366CC"),
	Secondary:  lipgloss.Color("#54595D"),
	Accent:     lipgloss.Color("#AC6600"),
	Text:       lipgloss.Color("#202122"),
	TextDim:    lipgloss.Color("#72777D"),
	Background: lipgloss.Color("#FFFFFF"),
	Surface:    lipgloss.Color("#EAECF0"),
	Border:     lipgloss.Color("#A2A9B1"),
	Link:       lipgloss.Color("#3366CC"),
	LinkIndex:  lipgloss.Color("#AC6600"),
	Heading:    lipgloss.Color("#000000"),
	Error:      lipgloss.Color("#D33"),
	Success:    lipgloss.Color("#14866D"),
	Warning:    lipgloss.Color("#AC6600"),
	Info:       lipgloss.Color("#3366CC"),
}

var Dark = Theme{
	Name:       "dark",
	Glamour:    styles.DarkStyle,
	Primary:    lipgloss.Color("#6D8AF0"),
	Secondary:  lipgloss.Color("#54595D"),
	Accent:     lipgloss.Color("#FFCC33"),
	Text:       lipgloss.Color("#EAECF0"),
	TextDim:    lipgloss.Color("#A2A9B1"),
	Background: lipgloss.Color("#27292D"),
	Surface:    lipgloss.Color("#202122"),
	Border:     lipgloss.Color("#54595D"),
	Link:       lipgloss.Color("#6D8AF0"),
	LinkIndex:  lipgloss.Color("#FFCC33"),
	Heading:    lipgloss.Color("#F8F9FA"),
	Error:      lipgloss.Color("#FF4242"),
	Success:    lipgloss.Color("#00AF89"),
	Warning:    lipgloss.Color("#FFCC33"),
	Info:       lipgloss.Color("#6D8AF0"),
}

var Black = Theme{
	Name:       "black",
	Glamour:    styles.DarkStyle,
	Primary:    lipgloss.Color("#6D8AF0"),
	Secondary:  lipgloss.Color("#27292D"),
	Accent:     lipgloss.Color("#FFCC33"),
	Text:       lipgloss.Color("#C8CCD1"),
	TextDim:    lipgloss.Color("#72777D"),
	Background: lipgloss.Color("#000000"),
	Surface:    lipgloss.Color("#101418"),
	Border:     lipgloss.Color("#27292D"),
	Link:       lipgloss.Color("#6D8AF0"),
	LinkIndex:  lipgloss.Color("#FFCC33"),
	Heading:    lipgloss.Color("#EAECF0"),
	Error:      lipgloss.Color("#FF4242"),
	Success:    lipgloss.Color("#00AF89"),
	Warning:    lipgloss.Color("#FFCC33"),
	Info:       lipgloss.Color("#6D8AF0"),
}

var Sepia = Theme{
	Name:       "sepia",
	Glamour:    styles.LightStyle,
	Primary:    lipgloss.Color("#3366CC"),
	Secondary:  lipgloss.Color("#646059"),
	Accent:     lipgloss.Color("#AC6600"),
	Text:       lipgloss.Color("#222222"),
	TextDim:    lipgloss.Color("#646059"),
	Background: lipgloss.Color("#F8F1E3"),
	Surface:    lipgloss.Color("#E1DACB"),
	Border:     lipgloss.Color("#CBC8C1"),
	Link:       lipgloss.Color("#3366CC"),
	LinkIndex:  lipgloss.Color("#AC6600"),
	Heading:    lipgloss.Color("#222222"),
	Error:      lipgloss.Color("#D33"),
	Success:    lipgloss.Color("#14866D"),
	Warning:    lipgloss.Color("#AC6600"),
	Info:       lipgloss.Color("#3366CC"),
}

// DefaultName is the theme used when none is configured.
const DefaultName = "light"

// Current is the active theme.
var Current = Light

// Set changes the active theme by name.
func Set(name string) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}

// Has reports whether name is a known theme.
func Has(name string) bool {
	_, ok := themes[name]
	return ok
}

// List returns all available theme names, sorted.
func List() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the theme after name in List order, wrapping around.
func Next(name string) string {
	names := List()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
