// Package analytics counts what a reader does in a session: pages viewed,
// where they came from, back presses and widget taps. Nothing leaves the
// machine; sessions are written to the local database.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/storage"
)

// SessionTimeout is the idle time after which activity starts a new
// session.
const SessionTimeout = 30 * time.Minute

// SessionSaver stores sessions.
type SessionSaver interface {
	SaveSession(ctx context.Context, r storage.SessionRecord) error
}

// SessionFunnel is the controller's observer. Its callbacks only touch
// memory; Persist does the writing.
type SessionFunnel struct {
	mu      sync.Mutex
	now     func() time.Time
	newID   func() string
	current *storage.SessionRecord
	done    []storage.SessionRecord
}

// Option configures a SessionFunnel.
type Option func(*SessionFunnel)

// WithClock sets the funnel's clock.
func WithClock(now func() time.Time) Option {
	return func(f *SessionFunnel) { f.now = now }
}

// WithIDs sets the session id generator.
func WithIDs(newID func() string) Option {
	return func(f *SessionFunnel) { f.newID = newID }
}

// NewSessionFunnel returns a funnel with no session yet. Session ids are
// UUIDv7, so they sort by start time.
func NewSessionFunnel(opts ...Option) *SessionFunnel {
	f := &SessionFunnel{
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *SessionFunnel) PageViewed(e *nav.Entry) {
	f.touch(func(s *storage.SessionRecord) {
		s.PageViews++
		s.Sources[e.Provenance.String()]++
	})
}

func (f *SessionFunnel) BackPressed() {
	f.touch(func(s *storage.SessionRecord) { s.BackPresses++ })
}

func (f *SessionFunnel) WidgetTapped(w nav.Widget) {
	f.touch(func(s *storage.SessionRecord) {
		switch w {
		case nav.WidgetSearch:
			s.SearchTaps++
		case nav.WidgetFeatured:
			s.FeaturedTaps++
		}
	})
}

// touch applies fn to the live session, rolling over to a new one after
// SessionTimeout of inactivity.
func (f *SessionFunnel) touch(fn func(*storage.SessionRecord)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if f.current != nil && now.Sub(f.current.LastAt) >= SessionTimeout {
		f.done = append(f.done, *f.current)
		f.current = nil
	}
	if f.current == nil {
		f.current = &storage.SessionRecord{
			ID:        f.newID(),
			StartedAt: now,
			Sources:   map[string]int{},
		}
	}
	f.current.LastAt = now
	fn(f.current)
}

// Current returns a copy of the live session.
func (f *SessionFunnel) Current() (storage.SessionRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return storage.SessionRecord{}, false
	}
	return copyRecord(*f.current), true
}

// Persist writes finished sessions and the live one. Finished sessions
// that fail to save are kept for the next call.
func (f *SessionFunnel) Persist(ctx context.Context, s SessionSaver) error {
	f.mu.Lock()
	pending := make([]storage.SessionRecord, 0, len(f.done)+1)
	for _, r := range f.done {
		pending = append(pending, copyRecord(r))
	}
	finished := len(pending)
	if f.current != nil {
		pending = append(pending, copyRecord(*f.current))
	}
	f.mu.Unlock()

	for i, r := range pending {
		if err := s.SaveSession(ctx, r); err != nil {
			f.mu.Lock()
			f.done = f.done[min(i, finished):]
			f.mu.Unlock()
			return fmt.Errorf("persisting session %s: %w", r.ID, err)
		}
	}

	f.mu.Lock()
	f.done = f.done[finished:]
	f.mu.Unlock()
	return nil
}

func copyRecord(r storage.SessionRecord) storage.SessionRecord {
	src := make(map[string]int, len(r.Sources))
	for k, v := range r.Sources {
		src[k] = v
	}
	r.Sources = src
	return r
}
