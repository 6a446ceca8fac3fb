package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wikisurf/internal/theme"
)

// CommandType identifies the kind of command bar interaction.
type CommandType int

const (
	CommandNone   CommandType = iota
	CommandEx                 // : commands
	CommandFind               // / find in page
	CommandFollow             // f link follow
)

// CommandResult is emitted when a command is submitted.
type CommandResult struct {
	Type  CommandType
	Value string
}

// Link returns the link number of a follow command.
func (r CommandResult) Link() (int, bool) {
	if r.Type != CommandFollow {
		return 0, false
	}
	n, err := strconv.Atoi(r.Value)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// CommandBar handles : commands, / find and f link following.
type CommandBar struct {
	input      textinput.Model
	active     bool
	cmdType    CommandType
	width      int
	history    map[CommandType][]string
	historyPos int
}

// NewCommandBar creates a new command bar.
func NewCommandBar() CommandBar {
	ti := textinput.New()
	ti.CharLimit = 256

	return CommandBar{
		input:      ti,
		history:    map[CommandType][]string{},
		historyPos: -1,
	}
}

// SetWidth sets the command bar width.
func (c *CommandBar) SetWidth(w int) {
	c.width = w
	c.input.Width = w - 4
}

// Open activates the command bar in the given mode.
func (c *CommandBar) Open(ct CommandType) tea.Cmd {
	c.active = true
	c.cmdType = ct
	c.input.Reset()
	c.historyPos = -1
	c.input.Validate = nil

	switch ct {
	case CommandEx:
		c.input.Placeholder = "command..."
		c.input.Prompt = ":"
	case CommandFind:
		c.input.Placeholder = "find in page..."
		c.input.Prompt = "/"
	case CommandFollow:
		c.input.Placeholder = "link #..."
		c.input.Prompt = "f "
		c.input.Validate = digitsOnly
	}

	return c.input.Focus()
}

func digitsOnly(s string) error {
	if _, err := strconv.Atoi(s); s != "" && err != nil {
		return err
	}
	return nil
}

// Close deactivates the command bar.
func (c *CommandBar) Close() {
	c.active = false
	c.cmdType = CommandNone
	c.input.Blur()
	c.input.Reset()
}

// IsActive reports whether the command bar is open.
func (c *CommandBar) IsActive() bool {
	return c.active
}

// SetValue sets the text input value.
func (c *CommandBar) SetValue(val string) {
	c.input.SetValue(val)
	c.input.SetCursor(len(val))
}

// Value returns the text typed so far.
func (c *CommandBar) Value() string {
	return c.input.Value()
}

// Type returns the current command type.
func (c *CommandBar) Type() CommandType {
	return c.cmdType
}

// Submit returns the command result and adds it to that mode's history.
func (c *CommandBar) Submit() CommandResult {
	val := strings.TrimSpace(c.input.Value())
	result := CommandResult{Type: c.cmdType, Value: val}

	if val != "" && c.cmdType != CommandFollow {
		c.history[c.cmdType] = append(c.history[c.cmdType], val)
	}

	c.Close()
	return result
}

// Update processes messages for the command bar.
func (c *CommandBar) Update(msg tea.Msg) (*CommandBar, tea.Cmd) {
	if !c.active {
		return c, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		hist := c.history[c.cmdType]
		switch msg.Type {
		case tea.KeyEsc:
			c.Close()
			return c, nil
		case tea.KeyEnter:
			// Submitted by the app.
			return c, nil
		case tea.KeyUp:
			if len(hist) > 0 {
				if c.historyPos < len(hist)-1 {
					c.historyPos++
				}
				c.SetValue(hist[len(hist)-1-c.historyPos])
			}
			return c, nil
		case tea.KeyDown:
			if c.historyPos > 0 {
				c.historyPos--
				c.SetValue(hist[len(hist)-1-c.historyPos])
			} else if c.historyPos == 0 {
				c.historyPos = -1
				c.input.Reset()
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// View renders the command bar.
func (c *CommandBar) View() string {
	if !c.active {
		return ""
	}

	t := theme.Current

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		Width(c.width)

	return barStyle.Render(c.input.View())
}
