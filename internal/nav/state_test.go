package nav

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	h := started(t)
	h.ctl.HandleRequest(title("Dog"), FromSearch)
	h.ctl.HandleRequest(title("Cat#Senses"), FromInternalLink)
	h.ctl.ShowScreen(ScreenSaved)
	h.ctl.OpenSearch("lynx", false)

	st := h.ctl.Snapshot()
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var decoded State
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	r := newHarness(t)
	r.ctl.Restore(context.Background(), decoded)

	if !r.ctl.Started() {
		t.Fatal("restored controller is not started")
	}
	got := screens(r.ctl.Stack())
	want := []string{"Main Page", "Dog", "Cat", "saved"}
	if len(got) != len(want) {
		t.Fatalf("stack = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stack[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	stack := r.ctl.Stack()
	if stack[1].Provenance != FromSearch {
		t.Errorf("Dog provenance = %v", stack[1].Provenance)
	}
	if stack[2].Title.Fragment != "Senses" {
		t.Errorf("Cat fragment = %q", stack[2].Title.Fragment)
	}
	if !r.ctl.Overlays().Search {
		t.Error("search overlay not restored")
	}
	if len(r.renderer.screens) != 1 || len(r.renderer.rendered) != 0 {
		t.Errorf("restore displayed more than the top: screens %v pages %v", r.renderer.screens, r.renderer.rendered)
	}

	// Entries below the top load lazily on back.
	r.back(t) // closes search
	r.back(t)
	if r.topTitle(t) != "Cat" || r.fetcher.count("Cat") != 1 {
		t.Errorf("top %q fetched %d", r.topTitle(t), r.fetcher.count("Cat"))
	}
	if len(r.history.records) != 0 {
		t.Errorf("restore recorded history: %v", r.history.records)
	}
}

func TestRestoreAfterLanguageChange(t *testing.T) {
	t.Parallel()

	h := started(t)
	h.open(t, "Dog")
	st := h.ctl.Snapshot()

	r := newHarness(t, WithSite(func() string { return "de.wikipedia.org" }))
	r.ctl.Restore(context.Background(), st)

	stack := r.ctl.Stack()
	if len(stack) != 1 {
		t.Fatalf("stack = %v, want only the main page", screens(stack))
	}
	if stack[0].Title.Site != "de.wikipedia.org" || stack[0].Title.Text != "Wikipedia:Hauptseite" {
		t.Errorf("main page = %+v", stack[0].Title)
	}
}

func TestRestoreSkipsBadEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := State{
		Language: "en",
		Entries: []SavedEntry{
			{Screen: "page", Site: "en.wikipedia.org", Title: "Dog", Provenance: "search", Time: now},
			{Screen: "page", Site: "en.wikipedia.org", Title: "Bad|Title", Time: now},
			{Screen: "gallery", Time: now},
			{Screen: "history", Time: now},
			{Screen: "history", Time: now.Add(time.Minute)},
		},
	}

	h := newHarness(t)
	h.ctl.Restore(context.Background(), st)

	stack := h.ctl.Stack()
	if got := screens(stack); len(got) != 2 || got[0] != "Dog" || got[1] != "history" {
		t.Fatalf("stack = %v, want [Dog history]", got)
	}
	if !stack[1].Time.Equal(now.Add(time.Minute)) {
		t.Errorf("duplicate screen kept the older entry: %v", stack[1].Time)
	}
}

func TestRestoreEmptyOpensMainPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ctl.Restore(context.Background(), State{Language: "en"})

	if got := screens(h.ctl.Stack()); len(got) != 1 || got[0] != "Main Page" {
		t.Errorf("stack = %v", got)
	}
	if len(h.renderer.rendered) != 1 {
		t.Errorf("main page not shown: %v", h.renderer.rendered)
	}
}
