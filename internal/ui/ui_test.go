package ui

import (
	"testing"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/wiki"
)

func TestListPanel(t *testing.T) {
	t.Parallel()

	lp := NewListPanel("History", "No history yet.")
	lp.SetSize(40, 9) // three rows fit
	var items []ListItem
	for _, s := range []string{"Dog", "Cat", "Wolf", "Fox", "Bear"} {
		items = append(items, ListItem{Title: page.MustNew(page.DefaultSite, s)})
	}
	lp.SetItems(items)

	lp.CursorUp()
	if lp.Cursor() != 0 {
		t.Errorf("cursor moved above the top: %d", lp.Cursor())
	}
	lp.GotoBottom()
	if it, _ := lp.Selected(); it.Title.Text != "Bear" || lp.offset != 2 {
		t.Errorf("GotoBottom selected %q at offset %d", it.Title.Text, lp.offset)
	}

	lp.RemoveSelected()
	if it, _ := lp.Selected(); it.Title.Text != "Fox" || len(lp.Items()) != 4 {
		t.Errorf("after remove selected %q of %d", it.Title.Text, len(lp.Items()))
	}

	if lp.HandleGKey() {
		t.Error("single g jumped to top")
	}
	if !lp.HandleGKey() || lp.Cursor() != 0 {
		t.Error("gg did not jump to top")
	}

	lp.SetItems(nil)
	if _, ok := lp.Selected(); ok {
		t.Error("Selected() on an empty list")
	}
	lp.RemoveSelected()
}

func TestTimeAgo(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(now, now.Add(-tt.ago)); got != tt.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestCommandResultLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		r    CommandResult
		n    int
		want bool
	}{
		{CommandResult{Type: CommandFollow, Value: "12"}, 12, true},
		{CommandResult{Type: CommandFollow, Value: "0"}, 0, false},
		{CommandResult{Type: CommandFollow, Value: "x"}, 0, false},
		{CommandResult{Type: CommandFind, Value: "3"}, 0, false},
	}
	for _, tt := range tests {
		n, ok := tt.r.Link()
		if n != tt.n || ok != tt.want {
			t.Errorf("%+v.Link() = %d, %v", tt.r, n, ok)
		}
	}
}

func TestCommandBarHistory(t *testing.T) {
	t.Parallel()

	cb := NewCommandBar()
	cb.Open(CommandEx)
	cb.SetValue(" lang de ")
	if r := cb.Submit(); r.Value != "lang de" || r.Type != CommandEx {
		t.Errorf("Submit() = %+v", r)
	}
	if cb.IsActive() {
		t.Error("still active after submit")
	}
	if got := cb.history[CommandEx]; len(got) != 1 {
		t.Errorf("history = %v", got)
	}
	cb.Open(CommandFollow)
	cb.SetValue("4")
	cb.Submit()
	if got := cb.history[CommandFollow]; len(got) != 0 {
		t.Errorf("follow numbers kept in history: %v", got)
	}
}

func TestSearchBarIgnoresStaleResults(t *testing.T) {
	t.Parallel()

	sb := NewSearchBar()
	sb.Open("dog")
	res := []wiki.SearchResult{{Title: page.MustNew(page.DefaultSite, "Dog")}}

	if sb.SetResults("do", res) {
		t.Error("results for an older query were accepted")
	}
	if !sb.SetResults("dog", res) {
		t.Fatal("results rejected")
	}
	if r, ok := sb.Selected(); !ok || r.Title.Text != "Dog" {
		t.Errorf("Selected() = %+v, %v", r, ok)
	}

	sb.Close()
	if sb.IsActive() || sb.Value() != "" || len(sb.Results()) != 0 {
		t.Error("Close() kept state")
	}
}

func TestViewportFind(t *testing.T) {
	t.Parallel()

	pv := NewPageViewport()
	pv.SetContent("alpha\nBeta gamma\nbeta\n")
	pv.SetSize(40, 10)

	if n := pv.Find("BETA"); n != 2 {
		t.Fatalf("Find() = %d, want 2", n)
	}
	if got := pv.FindInfo(); got != `"BETA": 1/2` {
		t.Errorf("FindInfo() = %q", got)
	}
	pv.FindNext(1)
	pv.FindNext(1)
	if got := pv.FindInfo(); got != `"BETA": 1/2` {
		t.Errorf("FindNext did not wrap: %q", got)
	}
	pv.FindNext(-1)
	if got := pv.FindInfo(); got != `"BETA": 2/2` {
		t.Errorf("FindNext(-1) = %q", got)
	}

	pv.ReplaceContent("new")
	if pv.Finding() {
		t.Error("find survived a content change")
	}
}

func TestCrumbs(t *testing.T) {
	t.Parallel()

	c := NewCrumbs()
	c.SetWidth(48) // two crumbs
	c.SetLabels([]string{"Main Page", "Dog", "Wolf", "History"})
	if got := c.Visible(); got != 2 {
		t.Errorf("Visible() = %d, want 2", got)
	}
	if c.View() == "" {
		t.Error("empty view")
	}
}

func TestContentsPane(t *testing.T) {
	t.Parallel()

	cp := NewContentsPane()
	cp.SetSize(100, 20)
	if cp.IsVisible() || cp.ArticleWidth() != 100 {
		t.Error("hidden pane takes space")
	}

	cp.Toggle()
	if !cp.IsVisible() || cp.ArticleWidth() != 69 {
		t.Errorf("ArticleWidth() = %d", cp.ArticleWidth())
	}

	cp.SetSections([]wiki.Section{{ID: "A", Title: "A", Level: 2}, {ID: "B", Title: "B", Level: 3}})
	cp.CursorDown()
	cp.CursorDown()
	if s, _ := cp.Selected(); s.ID != "B" {
		t.Errorf("Selected() = %+v", s)
	}

	cp.SetSize(40, 20)
	if cp.IsVisible() {
		t.Error("pane shown on a narrow screen")
	}
}
