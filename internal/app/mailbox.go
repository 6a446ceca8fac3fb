package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// postedMsg carries a function posted from another goroutine. Update runs
// it, which keeps every controller call on the bubbletea goroutine.
type postedMsg struct {
	run func()
}

// mailbox moves fetch completions and bus events onto the update loop.
type mailbox struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		ch:   make(chan func(), 32),
		done: make(chan struct{}),
	}
}

// post queues f. It blocks while the queue is full and gives up once the
// mailbox is closed.
func (mb *mailbox) post(f func()) {
	select {
	case mb.ch <- f:
	case <-mb.done:
	}
}

// wait returns a command delivering the next posted function.
func (mb *mailbox) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-mb.ch:
			return postedMsg{run: f}
		case <-mb.done:
			return nil
		}
	}
}

func (mb *mailbox) close() {
	mb.once.Do(func() { close(mb.done) })
}
