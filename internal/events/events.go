// Package events carries app-wide notifications between components that
// do not know about each other: theme and text size changes, and
// Wikipedia Zero state changes.
package events

import (
	"sync"

	"github.com/vidyasagar/wikisurf/internal/zero"
)

// Topic delivers values of one event kind to its subscribers.
// Handlers run synchronously, in subscription order, on the publishing
// goroutine.
type Topic[T any] struct {
	mu       sync.Mutex
	next     int
	handlers []handler[T]
}

type handler[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.handlers = append(t.handlers, handler[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, h := range t.handlers {
		if h.id == id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every current subscriber. Handlers may
// subscribe or unsubscribe while being called.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	hs := make([]handler[T], len(t.handlers))
	copy(hs, t.handlers)
	t.mu.Unlock()

	for _, h := range hs {
		h.fn(v)
	}
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// Bus groups the topics of the reader.
type Bus struct {
	Theme    Topic[string]
	TextSize Topic[int]
	Zero     Topic[zero.Notice]
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}
