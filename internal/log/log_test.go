package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecureHandlerMasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		attr     slog.Attr
		wantMask bool
	}{
		{"cookie", slog.String("Cookie", "WMF-Last-Access=1"), true},
		{"carrier meta", slog.String("X-Carrier-Meta", "operator=acme"), true},
		{"session id", slog.String("session_id", "0192f1"), true},
		{"keyword in key", slog.String("refresh_token_hint", "x"), true},
		{"bearer value", slog.String("header", "Bearer abc.def"), true},
		{"title", slog.String("title", "Dog"), false},
		{"site", slog.String("site", "en.wikipedia.org"), false},
		{"int", slog.Int("status", 404), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, true)
			logger.Info("msg", tt.attr)

			masked := strings.Contains(buf.String(), MaskValue)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v: %s", masked, tt.wantMask, buf.String())
			}
		})
	}
}

func TestSecureHandlerGroupsAndWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, true).With("cookie", "c=1")
	logger.Info("fetch", slog.Group("req", slog.String("authorization", "Basic Zm9vOmJhcg=="), slog.String("title", "Cat")))

	out := buf.String()
	if strings.Contains(out, "c=1") || strings.Contains(out, "Zm9v") {
		t.Errorf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "req.title=Cat") {
		t.Errorf("group attrs lost: %s", out)
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	var quiet, loud bytes.Buffer
	New(&quiet, false).Info("hidden")
	New(&loud, true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("non-verbose logger wrote info: %s", quiet.String())
	}
	if !strings.Contains(loud.String(), "shown") {
		t.Error("verbose logger dropped debug")
	}
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "wikisurf.log")
	logger, closer, err := OpenFile(path, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("page load failed", "title", "Dog")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "page load failed") {
		t.Errorf("log file = %q", data)
	}
}
