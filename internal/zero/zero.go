// Package zero tracks the Wikipedia Zero state: whether the reader's
// mobile carrier currently subsidises its traffic. The state arrives in
// response headers; the Tracker turns transitions into user notices.
package zero

import (
	"net/http"
	"strings"
	"sync"
)

// Response headers carrying the carrier state.
const (
	HeaderCarrier     = "X-Carrier"
	HeaderCarrierMeta = "X-Carrier-Meta"
)

// Search hints shown in the search bar.
const (
	SearchHint     = "Search Wikipedia"
	ZeroSearchHint = "Search Wikipedia Zero"
)

// Message is the carrier's banner.
type Message struct {
	Text string
	FG   string
	BG   string
}

// Status is one observation of the carrier state.
type Status struct {
	Enabled bool
	Carrier string
	Message Message
}

// FromHeaders reads a Status from response headers. A response without
// the carrier header means Zero is off.
func FromHeaders(h http.Header) Status {
	carrier := strings.TrimSpace(h.Get(HeaderCarrier))
	if carrier == "" {
		return Status{}
	}
	st := Status{Enabled: true, Carrier: carrier, Message: Message{Text: carrier}}
	for _, part := range strings.Split(h.Get(HeaderCarrierMeta), ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "msg":
			st.Message.Text = v
		case "fg":
			st.Message.FG = v
		case "bg":
			st.Message.BG = v
		}
	}
	return st
}

// NoticeKind says what a Notice announces.
type NoticeKind int

const (
	// NoticeCarrier announces that traffic is now free, or that the
	// carrier's message changed.
	NoticeCarrier NoticeKind = iota + 1
	// NoticeCharged announces that traffic is no longer free.
	NoticeCharged
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeCarrier:
		return "carrier"
	case NoticeCharged:
		return "charged"
	}
	return "none"
}

// Notice is shown to the user when the state changes.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Detail  string
	Message Message
	Hint    string
}

const (
	chargedTitle  = "Wikipedia Zero is off"
	chargedDetail = "Loading other pages may incur data charges."
	learnMore     = "Learn more about Wikipedia Zero."
)

// Tracker reconciles observed states against the last state the user was
// told about. While paused it only records; Resume catches up.
type Tracker struct {
	mu      sync.Mutex
	current Status
	seen    Status
	paused  bool
	publish func(Notice)
}

// NewTracker returns a tracker that hands notices to publish. publish is
// called without the tracker's lock held, possibly from a fetch goroutine.
func NewTracker(publish func(Notice)) *Tracker {
	if publish == nil {
		publish = func(Notice) {}
	}
	return &Tracker{publish: publish}
}

// OnHeaders records the state carried by a response.
func (t *Tracker) OnHeaders(h http.Header) {
	t.Observe(FromHeaders(h))
}

// Observe records st and publishes a notice if it changes what the user
// was last told.
func (t *Tracker) Observe(st Status) (Notice, bool) {
	t.mu.Lock()
	changed := st != t.current
	t.current = st
	if t.paused || !changed {
		t.mu.Unlock()
		return Notice{}, false
	}
	n, ok := t.reconcile()
	t.mu.Unlock()

	if ok {
		t.publish(n)
	}
	return n, ok
}

// Pause stops notices until Resume.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
	t.seen = t.current
}

// Resume publishes whatever changed while paused.
func (t *Tracker) Resume() (Notice, bool) {
	t.mu.Lock()
	t.paused = false
	if t.current == t.seen {
		t.mu.Unlock()
		return Notice{}, false
	}
	n, ok := t.reconcile()
	t.mu.Unlock()

	if ok {
		t.publish(n)
	}
	return n, ok
}

// Status returns the latest observed state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Hint returns the search hint for the state the user was last told about.
func (t *Tracker) Hint() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return hint(t.seen.Enabled)
}

func (t *Tracker) reconcile() (Notice, bool) {
	prev, cur := t.seen, t.current
	t.seen = cur

	switch {
	case prev.Enabled && !cur.Enabled:
		return Notice{Kind: NoticeCharged, Title: chargedTitle, Detail: chargedDetail, Hint: hint(false)}, true
	case cur.Enabled && (!prev.Enabled || prev.Message != cur.Message):
		return Notice{Kind: NoticeCarrier, Title: cur.Message.Text, Detail: learnMore, Message: cur.Message, Hint: hint(true)}, true
	}
	return Notice{}, false
}

func hint(enabled bool) string {
	if enabled {
		return ZeroSearchHint
	}
	return SearchHint
}
