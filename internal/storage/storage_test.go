package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	wslog "github.com/vidyasagar/wikisurf/internal/log"
	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func title(text string) page.Title {
	return page.MustNew(page.DefaultSite, text)
}

func TestOpenDBCreatesFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	db, err := OpenDB(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		t.Errorf("database file missing: %v", err)
	}

	// Reopening runs the migrations again without error.
	db2, err := OpenDB(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db2.Close()
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hs := NewHistoryStore(setupTestDB(t), wslog.Discard())
	t.Cleanup(hs.Close)

	hs.Record(title("Dog"), nav.FromSearch, base)
	hs.Record(title("Cat"), nav.FromInternalLink, base.Add(time.Minute))
	hs.Record(title("Cat"), nav.FromHistory, base.Add(2*time.Minute))
	hs.Record(title("Hot dog"), nav.FromInternalLink, base.Add(3*time.Minute))

	t.Run("repeat visit updates newest entry", func(t *testing.T) {
		n, err := hs.Count(ctx)
		if err != nil || n != 3 {
			t.Fatalf("Count() = %d, %v; want 3", n, err)
		}
	})

	t.Run("recent is newest first", func(t *testing.T) {
		got, err := hs.Recent(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Hot dog", "Cat", "Dog"}
		for i, w := range want {
			if got[i].Title.Text != w {
				t.Errorf("Recent()[%d] = %q, want %q", i, got[i].Title.Text, w)
			}
		}
		if got[1].Source != nav.FromHistory || !got[1].VisitedAt.Equal(base.Add(2*time.Minute)) {
			t.Errorf("updated entry = %+v", got[1])
		}
		if got[2].Title.Site != page.DefaultSite {
			t.Errorf("site = %q", got[2].Title.Site)
		}
	})

	t.Run("search", func(t *testing.T) {
		got, err := hs.Search(ctx, "dog", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("Search(dog) = %v", got)
		}
		got, _ = hs.Search(ctx, "100%", 10)
		if len(got) != 0 {
			t.Errorf("Search(100%%) matched %v", got)
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		got, _ := hs.Recent(ctx, 1)
		if err := hs.Remove(ctx, got[0].ID); err != nil {
			t.Fatal(err)
		}
		if n, _ := hs.Count(ctx); n != 2 {
			t.Errorf("Count() after Remove = %d", n)
		}
		if err := hs.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if n, _ := hs.Count(ctx); n != 0 {
			t.Errorf("Count() after Clear = %d", n)
		}
	})
}

func TestRecordDoesNotWaitForDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	hs := NewHistoryStore(db, wslog.Discard())
	t.Cleanup(hs.Close)

	// The pool has one connection; holding it in a transaction stalls
	// every other statement.
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	returned := make(chan struct{})
	go func() {
		hs.Record(title("Dog"), nav.FromSearch, base)
		hs.Record(title("Cat"), nav.FromInternalLink, base.Add(time.Minute))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Record() blocked on the database")
	}

	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	got, err := hs.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title.Text != "Cat" || got[1].Title.Text != "Dog" {
		t.Errorf("Recent() = %+v", got)
	}
}

func TestRecordAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hs := NewHistoryStore(setupTestDB(t), wslog.Discard())
	hs.Record(title("Dog"), nav.FromSearch, base)
	hs.Close()
	hs.Close()
	hs.Record(title("Cat"), nav.FromSearch, base.Add(time.Minute))

	n, err := hs.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestSavedPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSavedPageStore(setupTestDB(t))
	dog := title("Dog")

	if _, err := s.Get(ctx, dog.Key()); !errors.Is(err, ErrNotSaved) {
		t.Errorf("Get() on empty store error = %v", err)
	}
	if html, ok, err := s.SavedHTML(ctx, dog.Key()); ok || err != nil || html != "" {
		t.Errorf("SavedHTML() = %q %v %v", html, ok, err)
	}

	if err := s.Save(ctx, dog, "<p>v1</p>", base); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, dog, "<p>v2</p>", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, title("Cat"), "<p>cat</p>", base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	sp, err := s.Get(ctx, dog.WithFragment("Breeds").Key())
	if err != nil {
		t.Fatal(err)
	}
	if sp.HTML != "<p>v2</p>" || !sp.SavedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("Get() = %+v", sp)
	}
	if !s.Has(ctx, dog.Key()) {
		t.Error("Has() = false")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title.Text != "Dog" || list[0].HTML != "" {
		t.Errorf("List() = %+v", list)
	}

	if err := s.Remove(ctx, dog.Key()); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, dog.Key()); !errors.Is(err, ErrNotSaved) {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSessionStore(setupTestDB(t))

	r := SessionRecord{ID: "a", StartedAt: base, LastAt: base, PageViews: 1, Sources: map[string]int{"search": 1}}
	if err := s.SaveSession(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.PageViews, r.BackPresses, r.LastAt = 4, 2, base.Add(time.Minute)
	r.Sources["internal_link"] = 3
	if err := s.SaveSession(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSession(ctx, SessionRecord{ID: "b", StartedAt: base.Add(time.Hour), LastAt: base.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Sessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "b" {
		t.Fatalf("Sessions() = %+v", got)
	}
	a := got[1]
	if a.PageViews != 4 || a.BackPresses != 2 || a.Sources["internal_link"] != 3 || !a.LastAt.Equal(base.Add(time.Minute)) {
		t.Errorf("updated session = %+v", a)
	}
}

func TestStateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := LoadState(dir); !errors.Is(err, ErrNoState) {
		t.Fatalf("LoadState() on empty dir error = %v", err)
	}

	st := nav.State{
		Language:  "en",
		Searching: true,
		Entries: []nav.SavedEntry{
			{Screen: "page", Site: page.DefaultSite, Title: "Dog", Provenance: "search", Time: base},
			{Screen: "history", Time: base.Add(time.Minute)},
		},
	}
	if err := SaveState(dir, st); err != nil {
		t.Fatal(err)
	}
	got, err := LoadState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Searching || len(got.Entries) != 2 || got.Entries[0].Title != "Dog" || !got.Entries[1].Time.Equal(base.Add(time.Minute)) {
		t.Errorf("LoadState() = %+v", got)
	}

	if err := ClearState(dir); err != nil {
		t.Fatal(err)
	}
	if err := ClearState(dir); err != nil {
		t.Errorf("second ClearState() error = %v", err)
	}
	if _, err := LoadState(dir); !errors.Is(err, ErrNoState) {
		t.Errorf("LoadState() after clear error = %v", err)
	}
}
