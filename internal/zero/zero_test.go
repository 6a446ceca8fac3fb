package zero

import (
	"net/http"
	"testing"
)

func on(msg string) Status {
	return Status{Enabled: true, Carrier: "acme", Message: Message{Text: msg}}
}

func TestFromHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header http.Header
		want   Status
	}{
		{"no header", http.Header{}, Status{}},
		{"carrier only", http.Header{"X-Carrier": {"acme"}}, Status{Enabled: true, Carrier: "acme", Message: Message{Text: "acme"}}},
		{
			"with meta",
			http.Header{"X-Carrier": {"acme"}, "X-Carrier-Meta": {"msg=Free Wikipedia by Acme; fg=#fff ;bg=#c00;junk"}},
			Status{Enabled: true, Carrier: "acme", Message: Message{Text: "Free Wikipedia by Acme", FG: "#fff", BG: "#c00"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FromHeaders(tt.header); got != tt.want {
				t.Errorf("FromHeaders() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransitions(t *testing.T) {
	t.Parallel()

	var published []Notice
	tr := NewTracker(func(n Notice) { published = append(published, n) })

	steps := []struct {
		name     string
		st       Status
		wantKind NoticeKind
		wantHint string
	}{
		{"off stays quiet", Status{}, 0, SearchHint},
		{"turns on", on("Free by Acme"), NoticeCarrier, ZeroSearchHint},
		{"same state is quiet", on("Free by Acme"), 0, ZeroSearchHint},
		{"message changes", on("Acme: Wikipedia on us"), NoticeCarrier, ZeroSearchHint},
		{"turns off", Status{}, NoticeCharged, SearchHint},
	}
	for _, s := range steps {
		n, ok := tr.Observe(s.st)
		if ok != (s.wantKind != 0) || n.Kind != s.wantKind {
			t.Fatalf("%s: notice = %v %v, want %v", s.name, n.Kind, ok, s.wantKind)
		}
		if tr.Hint() != s.wantHint {
			t.Errorf("%s: hint = %q, want %q", s.name, tr.Hint(), s.wantHint)
		}
	}
	if len(published) != 3 {
		t.Errorf("published %d notices, want 3", len(published))
	}
	if published[0].Title != "Free by Acme" {
		t.Errorf("carrier notice title = %q", published[0].Title)
	}
}

func TestPausedLapseReportedOnResume(t *testing.T) {
	t.Parallel()

	var published []Notice
	tr := NewTracker(func(n Notice) { published = append(published, n) })
	tr.Observe(on("Free"))
	published = nil

	tr.Pause()
	if _, ok := tr.Observe(Status{}); ok {
		t.Fatal("notice published while paused")
	}
	if tr.Status().Enabled {
		t.Error("paused tracker did not record the state")
	}

	n, ok := tr.Resume()
	if !ok || n.Kind != NoticeCharged {
		t.Fatalf("Resume() = %v %v, want charged", n.Kind, ok)
	}
	if len(published) != 1 {
		t.Errorf("published %d notices", len(published))
	}
}

func TestResumeWithoutChange(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil)
	tr.Observe(on("Free"))
	tr.Pause()
	tr.Observe(on("Free"))
	if _, ok := tr.Resume(); ok {
		t.Error("Resume() reported a notice for an unchanged state")
	}
}

func TestOnHeaders(t *testing.T) {
	t.Parallel()

	var got []NoticeKind
	tr := NewTracker(func(n Notice) { got = append(got, n.Kind) })
	tr.OnHeaders(http.Header{"X-Carrier": {"acme"}})
	tr.OnHeaders(http.Header{})

	if len(got) != 2 || got[0] != NoticeCarrier || got[1] != NoticeCharged {
		t.Errorf("notices = %v", got)
	}
}
