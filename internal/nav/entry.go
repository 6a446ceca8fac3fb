package nav

import (
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// Provenance records how a navigation request originated.
type Provenance int

const (
	NoProvenance Provenance = iota
	FromExternalLink
	FromSearch
	FromMainPage
	FromInternalLink
	FromHistory
	FromSaved
	FromRandom
)

var provenanceNames = map[Provenance]string{
	NoProvenance:     "none",
	FromExternalLink: "external_link",
	FromSearch:       "search",
	FromMainPage:     "main_page",
	FromInternalLink: "internal_link",
	FromHistory:      "history",
	FromSaved:        "saved",
	FromRandom:       "random",
}

func (p Provenance) String() string {
	if s, ok := provenanceNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParseProvenance is the inverse of Provenance.String.
func ParseProvenance(s string) (Provenance, bool) {
	for p, name := range provenanceNames {
		if name == s {
			return p, true
		}
	}
	return NoProvenance, false
}

// Screen is the kind of view an entry displays.
type Screen int

const (
	ScreenPage Screen = iota
	ScreenHistory
	ScreenSaved
	ScreenSearch
)

var screenNames = map[Screen]string{
	ScreenPage:    "page",
	ScreenHistory: "history",
	ScreenSaved:   "saved",
	ScreenSearch:  "search",
}

func (s Screen) String() string {
	if n, ok := screenNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseScreen is the inverse of Screen.String.
func ParseScreen(s string) (Screen, bool) {
	for sc, name := range screenNames {
		if name == s {
			return sc, true
		}
	}
	return ScreenPage, false
}

// Status tracks the load of a page entry.
type Status int

const (
	StatusPending Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// ContentState is whatever the renderer keeps for a displayed entry.
// The controller only holds it and checks it for BackHandler and FindCloser.
type ContentState any

// BackHandler is implemented by content states that consume back presses
// themselves, for example an open find-in-page bar.
type BackHandler interface {
	HandleBack() bool
}

// FindCloser is implemented by content states with a find-in-page mode.
type FindCloser interface {
	CloseFind()
}

// Entry is one element of the navigation stack. Identity fields are fixed
// at creation; only State and the load bookkeeping change afterwards.
type Entry struct {
	Screen     Screen
	Title      page.Title
	Provenance Provenance
	Time       time.Time
	State      ContentState

	status Status
	err    error
	gen    uint64
}

// Status returns the load status of a page entry.
func (e *Entry) Status() Status { return e.status }

// Err returns the error of the last failed load.
func (e *Entry) Err() error { return e.err }

// IsPage reports whether the entry displays a wiki page.
func (e *Entry) IsPage() bool { return e.Screen == ScreenPage }

func (e *Entry) release() {
	e.State = nil
}
