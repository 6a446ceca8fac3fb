package nav

import (
	"context"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// State is the persisted form of a controller: enough to rebuild the
// stack. Content states and cached pages are not part of it.
type State struct {
	Language  string       `json:"language"`
	Searching bool         `json:"searching,omitempty"`
	Entries   []SavedEntry `json:"entries"`
}

// SavedEntry is one persisted stack entry.
type SavedEntry struct {
	Screen     string    `json:"screen"`
	Site       string    `json:"site,omitempty"`
	Title      string    `json:"title,omitempty"`
	Fragment   string    `json:"fragment,omitempty"`
	Provenance string    `json:"provenance,omitempty"`
	Time       time.Time `json:"time"`
}

// Snapshot captures the stack for persistence.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Language:  page.SiteLanguage(c.site()),
		Searching: c.overlays.Search,
		Entries:   make([]SavedEntry, 0, len(c.stack)),
	}
	for _, e := range c.stack {
		se := SavedEntry{
			Screen:     e.Screen.String(),
			Provenance: e.Provenance.String(),
			Time:       e.Time,
		}
		if e.IsPage() {
			se.Site = e.Title.Site
			se.Title = e.Title.Text
			se.Fragment = e.Title.Fragment
		}
		st.Entries = append(st.Entries, se)
	}
	return st
}

// Restore activates the controller from a snapshot. Only the top entry is
// loaded; the others load when back navigation reaches them. A snapshot
// taken under another language, or one with no usable entries, is
// discarded in favour of the main page.
func (c *Controller) Restore(ctx context.Context, st State) {
	c.mu.Lock()
	c.ctx = ctx
	c.started = true
	c.stack = nil
	c.overlays = Overlays{}

	lang := page.SiteLanguage(c.site())
	if st.Language != lang {
		c.log.Info("language changed since last session, starting at main page",
			"saved", st.Language, "current", lang)
	} else {
		c.stack = c.restoreEntries(st.Entries)
	}

	if len(c.stack) == 0 {
		c.reset()
	} else {
		c.display(c.top())
	}
	if st.Searching {
		c.openSearch("", false)
	}

	jobs := c.takePending()
	c.mu.Unlock()

	c.launch(jobs)
}

func (c *Controller) restoreEntries(saved []SavedEntry) []*Entry {
	stack := make([]*Entry, 0, len(saved))
	for _, se := range saved {
		screen, ok := ParseScreen(se.Screen)
		if !ok {
			c.log.Warn("skipping saved entry with unknown screen", "screen", se.Screen)
			continue
		}
		prov, _ := ParseProvenance(se.Provenance)
		e := &Entry{Screen: screen, Provenance: prov, Time: se.Time}

		if screen == ScreenPage {
			t, err := page.New(se.Site, se.Title)
			if err != nil {
				c.log.Warn("skipping saved entry with bad title", "title", se.Title, "error", err)
				continue
			}
			e.Title = t.WithFragment(se.Fragment)
		} else if n := len(stack); n > 0 && stack[n-1].Screen == screen {
			stack[n-1] = e
			continue
		}
		stack = append(stack, e)
	}
	return stack
}
