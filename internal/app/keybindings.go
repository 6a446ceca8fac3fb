package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for wikisurf.
type KeyMap struct {
	// Scrolling
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding

	// Navigation
	Back       key.Binding
	FollowLink key.Binding
	Search     key.Binding
	MainPage   key.Binding
	Random     key.Binding
	Reload     key.Binding
	Open       key.Binding

	// Screens
	History  key.Binding
	Saved    key.Binding
	SavePage key.Binding
	Contents key.Binding

	// Modes
	CommandMode key.Binding
	Find        key.Binding
	FindNext    key.Binding
	FindPrev    key.Binding
	Menu        key.Binding
	Select      key.Binding

	// Display
	Theme   key.Binding
	Larger  key.Binding
	Smaller key.Binding

	// Actions
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown", " "),
			key.WithHelp("Ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("Ctrl+u", "half page up"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "b"),
			key.WithHelp("Esc/b", "back"),
		),
		FollowLink: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow link"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		MainPage: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "main page"),
		),
		Random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "random article"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		History: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "history"),
		),
		Saved: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "saved pages"),
		),
		SavePage: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save page"),
		),
		Contents: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "contents"),
		),
		CommandMode: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command mode"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find in page"),
		),
		FindNext: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		FindPrev: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous match"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "menu"),
		),
		Select: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "select mode"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "next theme"),
		),
		Larger: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "larger text"),
		),
		Smaller: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "smaller text"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
