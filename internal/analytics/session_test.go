package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type saver struct {
	saved  map[string]storage.SessionRecord
	failOn string
}

func (s *saver) SaveSession(_ context.Context, r storage.SessionRecord) error {
	if r.ID == s.failOn {
		return errors.New("disk full")
	}
	s.saved[r.ID] = r
	return nil
}

func newFunnel() (*SessionFunnel, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	n := 0
	f := NewSessionFunnel(WithClock(c.now), WithIDs(func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}))
	return f, c
}

func TestFunnelCounts(t *testing.T) {
	t.Parallel()

	f, _ := newFunnel()
	if _, ok := f.Current(); ok {
		t.Fatal("session exists before any activity")
	}

	f.PageViewed(&nav.Entry{Provenance: nav.FromMainPage})
	f.PageViewed(&nav.Entry{Provenance: nav.FromSearch})
	f.PageViewed(&nav.Entry{Provenance: nav.FromSearch})
	f.BackPressed()
	f.WidgetTapped(nav.WidgetSearch)
	f.WidgetTapped(nav.WidgetFeatured)
	f.WidgetTapped(nav.WidgetFeatured)

	s, ok := f.Current()
	if !ok {
		t.Fatal("no session")
	}
	if s.PageViews != 3 || s.BackPresses != 1 || s.SearchTaps != 1 || s.FeaturedTaps != 2 {
		t.Errorf("session = %+v", s)
	}
	if s.Sources["search"] != 2 || s.Sources["main_page"] != 1 {
		t.Errorf("sources = %v", s.Sources)
	}
}

func TestFunnelRollsOverAfterIdle(t *testing.T) {
	t.Parallel()

	f, c := newFunnel()
	f.PageViewed(&nav.Entry{Provenance: nav.FromMainPage})
	c.advance(SessionTimeout - time.Second)
	f.BackPressed()

	if s, _ := f.Current(); s.ID != "s1" {
		t.Fatalf("session rolled over early: %s", s.ID)
	}

	c.advance(SessionTimeout)
	f.PageViewed(&nav.Entry{Provenance: nav.FromHistory})
	s, _ := f.Current()
	if s.ID != "s2" || s.PageViews != 1 || s.BackPresses != 0 {
		t.Errorf("new session = %+v", s)
	}

	sv := &saver{saved: map[string]storage.SessionRecord{}}
	if err := f.Persist(context.Background(), sv); err != nil {
		t.Fatal(err)
	}
	if len(sv.saved) != 2 || sv.saved["s1"].BackPresses != 1 {
		t.Errorf("saved = %+v", sv.saved)
	}

	// Finished sessions are written once; the live one every time.
	sv.saved = map[string]storage.SessionRecord{}
	if err := f.Persist(context.Background(), sv); err != nil {
		t.Fatal(err)
	}
	if _, ok := sv.saved["s1"]; ok || len(sv.saved) != 1 {
		t.Errorf("second persist saved %v", sv.saved)
	}
}

func TestPersistKeepsFailedSessions(t *testing.T) {
	t.Parallel()

	f, c := newFunnel()
	f.BackPressed()
	c.advance(time.Hour)
	f.BackPressed()

	sv := &saver{saved: map[string]storage.SessionRecord{}, failOn: "s1"}
	if err := f.Persist(context.Background(), sv); err == nil {
		t.Fatal("Persist() succeeded despite a failing saver")
	}

	sv.failOn = ""
	if err := f.Persist(context.Background(), sv); err != nil {
		t.Fatal(err)
	}
	if _, ok := sv.saved["s1"]; !ok {
		t.Error("failed session was dropped")
	}
}

func TestPersistToSQLite(t *testing.T) {
	t.Parallel()

	db, err := storage.OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	f := NewSessionFunnel()
	f.PageViewed(&nav.Entry{Provenance: nav.FromExternalLink})

	store := storage.NewSessionStore(db)
	if err := f.Persist(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	got, err := store.Sessions(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Sources["external_link"] != 1 || len(got[0].ID) != 36 {
		t.Errorf("Sessions() = %+v", got)
	}
}
