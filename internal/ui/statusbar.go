package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/theme"
	"github.com/vidyasagar/wikisurf/internal/zero"
)

// Modes shown in the status bar.
const (
	ModeRead    = "READ"
	ModeSearch  = "SEARCH"
	ModeFind    = "FIND"
	ModeFollow  = "FOLLOW"
	ModeCommand = "COMMAND"
	ModeMenu    = "MENU"
	ModeHistory = "HISTORY"
	ModeSaved   = "SAVED"
	ModeSelect  = "SELECT"
)

// StatusBar shows the current page info at the bottom of the screen.
type StatusBar struct {
	title      string
	language   string
	loading    bool
	offline    bool
	scrollInfo string
	mode       string
	linkCount  int
	width      int
	message    string // temporary status message
	isError    bool
	carrier    *zero.Message
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{mode: ModeRead}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetTitle updates the page title.
func (s *StatusBar) SetTitle(title string) {
	s.title = title
}

// SetLanguage sets the wiki language badge.
func (s *StatusBar) SetLanguage(lang string) {
	s.language = lang
}

// SetLoading sets the loading indicator state.
func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

// SetOffline marks the page as a saved copy.
func (s *StatusBar) SetOffline(offline bool) {
	s.offline = offline
}

// SetScrollInfo sets the scroll position string (e.g. "42%", "TOP", "BOT").
func (s *StatusBar) SetScrollInfo(info string) {
	s.scrollInfo = info
}

// SetMode sets the current mode indicator.
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// Mode returns the current mode.
func (s *StatusBar) Mode() string {
	return s.mode
}

// SetLinkCount sets the total link count displayed.
func (s *StatusBar) SetLinkCount(n int) {
	s.linkCount = n
}

// SetMessage sets a temporary status message.
func (s *StatusBar) SetMessage(msg string) {
	s.message, s.isError = msg, false
}

// SetError sets a temporary error message.
func (s *StatusBar) SetError(msg string) {
	s.message, s.isError = msg, true
}

// Message returns the temporary message.
func (s *StatusBar) Message() string {
	return s.message
}

// SetCarrier shows the zero-rated carrier banner; nil hides it.
func (s *StatusBar) SetCarrier(m *zero.Message) {
	s.carrier = m
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background)

	switch s.mode {
	case ModeRead:
		modeStyle = modeStyle.Background(t.Primary)
	case ModeSearch:
		modeStyle = modeStyle.Background(t.Warning)
	case ModeFind, ModeCommand:
		modeStyle = modeStyle.Background(t.Accent)
	case ModeFollow:
		modeStyle = modeStyle.Background(t.Link)
	case ModeSelect:
		modeStyle = modeStyle.Background(t.Success)
	default:
		modeStyle = modeStyle.Background(t.Secondary)
	}
	mode := modeStyle.Render(s.mode)

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface)

	// Left side: loading, message or title.
	var left string
	switch {
	case s.loading:
		left = lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.Surface).
			Bold(true).
			Padding(0, 1).
			Render("Loading...")
	case s.message != "":
		fg := t.Info
		if s.isError {
			fg = t.Error
		}
		left = lipgloss.NewStyle().
			Foreground(fg).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.message)
	case s.title != "":
		left = lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.title)
	}

	// Right side: carrier, offline, language, links and scroll position.
	var right string
	rightStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)

	if s.carrier != nil && s.carrier.Text != "" {
		cs := lipgloss.NewStyle().Padding(0, 1).Foreground(t.Background).Background(t.Success)
		if s.carrier.FG != "" {
			cs = cs.Foreground(lipgloss.Color(s.carrier.FG))
		}
		if s.carrier.BG != "" {
			cs = cs.Background(lipgloss.Color(s.carrier.BG))
		}
		right += cs.Render(s.carrier.Text)
	}
	if s.offline {
		right += rightStyle.Render("saved")
	}
	if s.language != "" {
		right += rightStyle.Render(s.language)
	}
	if s.linkCount > 0 {
		right += rightStyle.Render(fmt.Sprintf("%d links", s.linkCount))
	}
	if s.scrollInfo != "" {
		right += lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.scrollInfo)
	}

	spacerWidth := max(s.width-lipgloss.Width(mode)-lipgloss.Width(left)-lipgloss.Width(right), 0)
	spacer := lipgloss.NewStyle().
		Background(t.Surface).
		Render(fmt.Sprintf("%*s", spacerWidth, ""))

	return barStyle.Render(mode + left + spacer + right)
}
