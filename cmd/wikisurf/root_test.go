package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vidyasagar/wikisurf/internal/config"
	wslog "github.com/vidyasagar/wikisurf/internal/log"
	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/storage"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has use", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cmd.Use, "wikisurf") {
			t.Errorf("expected use to start with 'wikisurf', got %q", cmd.Use)
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"config", "verbose", "lang"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("expected persistent flag %q", name)
			}
		}
	})

	t.Run("has reader flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"theme", "search", "share", "widget"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"history": false, "saved": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected subcommand %q", name)
			}
		}
	})
}

func TestLaunchIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     rootOptions
		args     []string
		want     nav.Intent
		explicit bool
	}{
		{name: "nothing", want: nav.Intent{Kind: nav.IntentMain}},
		{
			name:     "title",
			args:     []string{"Alan Turing"},
			want:     nav.Intent{Kind: nav.IntentSearch, Query: "Alan Turing"},
			explicit: true,
		},
		{
			name:     "url",
			args:     []string{"https://de.wikipedia.org/wiki/Berlin"},
			want:     nav.Intent{Kind: nav.IntentView, URI: "https://de.wikipedia.org/wiki/Berlin"},
			explicit: true,
		},
		{
			name:     "wiki path",
			args:     []string{"/wiki/Dog"},
			want:     nav.Intent{Kind: nav.IntentView, URI: "/wiki/Dog"},
			explicit: true,
		},
		{
			name:     "share",
			opts:     rootOptions{share: "turing machine"},
			want:     nav.Intent{Kind: nav.IntentShare, Query: "turing machine"},
			explicit: true,
		},
		{
			name:     "search",
			opts:     rootOptions{search: "Dog"},
			want:     nav.Intent{Kind: nav.IntentSearch, Query: "Dog"},
			explicit: true,
		},
		{
			name:     "search widget",
			opts:     rootOptions{widget: "search"},
			want:     nav.Intent{Kind: nav.IntentSearchWidget},
			explicit: true,
		},
		{
			name:     "featured widget wins over a title",
			opts:     rootOptions{widget: "featured"},
			args:     []string{"Dog"},
			want:     nav.Intent{Kind: nav.IntentFeaturedWidget},
			explicit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, explicit, err := launchIntent(&tt.opts, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || explicit != tt.explicit {
				t.Errorf("launchIntent() = %+v, %v; want %+v, %v", got, explicit, tt.want, tt.explicit)
			}
		})
	}

	t.Run("unknown widget", func(t *testing.T) {
		t.Parallel()
		_, _, err := launchIntent(&rootOptions{widget: "weather"}, nil)
		if !errors.Is(err, errUnknownWidget) {
			t.Errorf("err = %v, want errUnknownWidget", err)
		}
	})
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("language: de\ntext_size: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(&rootOptions{configPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != "de" || cfg.TextSize != 2 {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg, err = loadConfig(&rootOptions{configPath: path, lang: "FR"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != "fr" {
		t.Errorf("language = %q, want fr", cfg.Language)
	}

	if _, err := loadConfig(&rootOptions{configPath: path, theme: "no-such-theme"}); !errors.Is(err, config.ErrUnknownTheme) {
		t.Errorf("err = %v, want ErrUnknownTheme", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(&rootOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != config.DefaultLanguage {
		t.Errorf("language = %q", cfg.Language)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: "+filepath.Join(dir, "data")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.OpenDB(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	hs := storage.NewHistoryStore(db, wslog.Discard())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"Dog", "Wolf"} {
		if err := hs.Add(context.Background(), page.MustNew(page.DefaultSite, title), nav.FromSearch, at.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	hs.Close()
	db.Close()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "history"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"# Reading history", "| Read", "[Wolf](https://en.wikipedia.org/wiki/Wolf)", "search", "2 entries"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Wolf") > strings.Index(got, "[Dog]") {
		t.Error("history is not newest first")
	}
}

func TestWriteSavedEmpty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := writeSaved(&out, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No saved pages.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	if !strings.Contains(out.String(), "wikisurf version") {
		t.Errorf("output = %q", out.String())
	}
}
