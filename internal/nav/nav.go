// Package nav is the navigation core of the reader. A Controller keeps the
// stack of displayed pages and ancillary screens, decides when a request
// reuses the top entry, mediates back presses through overlays before
// popping, and reconciles asynchronous page loads with the stack.
//
// Operations are meant to be called from one control goroutine. Fetches run
// through the configured runner and their completions are handed back
// through the poster; a completion whose entry is no longer on top, or
// whose generation was superseded, is dropped.
package nav

import (
	"context"
	"errors"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
)

var (
	// ErrNotStarted is returned by operations on a controller that has not
	// been started or restored, or has been stopped.
	ErrNotStarted = errors.New("navigation not started")

	// ErrInvalidTitle is returned for requests that cannot address a page.
	ErrInvalidTitle = page.ErrInvalidTitle

	// ErrNotScreen is returned by ShowScreen for ScreenPage.
	ErrNotScreen = errors.New("pages are opened with HandleRequest")
)

// Document is fetched page content. Cost is its weight in the page cache.
type Document interface {
	Cost() int64
}

// Fetcher retrieves page content. It is called off the control goroutine.
type Fetcher interface {
	Fetch(ctx context.Context, t page.Title) (Document, error)
}

// Renderer draws entries. Calls happen with the controller locked, so
// implementations must not call back into the Controller.
type Renderer interface {
	// Render displays doc for a page entry and returns its content state.
	Render(e *Entry, doc Document) (ContentState, error)
	// ShowScreen displays an ancillary screen.
	ShowScreen(e *Entry) ContentState
	// ShowLoading displays a placeholder while e is fetched.
	ShowLoading(e *Entry)
	// ShowError displays a failed load in place of the page.
	ShowError(e *Entry, err error)
	// ScrollTo scrolls an already displayed page to a section.
	ScrollTo(e *Entry, fragment string)
}

// Cache is the page cache consulted before every fetch.
type Cache interface {
	Get(key page.Key) (Document, bool)
	Put(key page.Key, doc Document, cost int64)
	Invalidate(key page.Key)
}

// HistoryRecorder is told about every accepted page navigation.
type HistoryRecorder interface {
	Record(t page.Title, p Provenance, at time.Time)
}

// Widget names a home-screen style entry point.
type Widget int

const (
	WidgetSearch Widget = iota
	WidgetFeatured
)

func (w Widget) String() string {
	if w == WidgetFeatured {
		return "featured"
	}
	return "search"
}

// Observer receives session events.
type Observer interface {
	PageViewed(e *Entry)
	BackPressed()
	WidgetTapped(w Widget)
}

// ExternalOpener opens pages the reader cannot render.
type ExternalOpener interface {
	OpenExternal(t page.Title)
}

// Overlays is the transient UI state that intercepts back presses before
// the stack does.
type Overlays struct {
	Search     bool
	Query      string
	FromWidget bool
	Drawer     bool
	ActionMode bool
}

// Shell is told whenever overlay state changes.
type Shell interface {
	OverlaysChanged(o Overlays)
}

// BackResult is the outcome of GoBack.
type BackResult int

const (
	// BackHandled means the press was consumed inside the app.
	BackHandled BackResult = iota
	// BackExit means the surrounding application should close.
	BackExit
)

func (r BackResult) String() string {
	if r == BackExit {
		return "exit"
	}
	return "handled"
}

type nopHistory struct{}

func (nopHistory) Record(page.Title, Provenance, time.Time) {}

type nopObserver struct{}

func (nopObserver) PageViewed(*Entry)   {}
func (nopObserver) BackPressed()        {}
func (nopObserver) WidgetTapped(Widget) {}

type nopOpener struct{}

func (nopOpener) OpenExternal(page.Title) {}

type nopShell struct{}

func (nopShell) OverlaysChanged(Overlays) {}
