package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Site() != "en.wikipedia.org" {
		t.Errorf("Site() = %q", cfg.Site())
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"german", func(c *Config) { c.Language = "de" }, nil},
		{"empty language", func(c *Config) { c.Language = "" }, ErrInvalidLanguage},
		{"undetermined language", func(c *Config) { c.Language = "und" }, ErrInvalidLanguage},
		{"malformed language", func(c *Config) { c.Language = "not a tag" }, ErrInvalidLanguage},
		{"unknown theme", func(c *Config) { c.Theme = "neon" }, ErrUnknownTheme},
		{"text size too big", func(c *Config) { c.TextSize = MaxTextSize + 1 }, ErrInvalidTextSize},
		{"text size smallest", func(c *Config) { c.TextSize = MinTextSize }, nil},
		{"zero cache", func(c *Config) { c.CacheCapacity = 0 }, ErrInvalidCacheCapacity},
		{"negative prefetch", func(c *Config) { c.PrefetchLinks = -1 }, ErrInvalidPrefetch},
		{"no prefetch", func(c *Config) { c.PrefetchLinks = 0 }, nil},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"ftp scheme", func(c *Config) { c.APIScheme = "ftp" }, ErrInvalidScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg == nil || cfg.Language != DefaultLanguage {
			t.Errorf("Load() config = %+v", cfg)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "language: fr\ntheme: sepia\ntimeout: 5s\nprefetch_links: 0\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Language != "fr" || cfg.Theme != "sepia" || cfg.Timeout != 5*time.Second || cfg.PrefetchLinks != 0 {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("unset field lost its default: %q", cfg.UserAgent)
		}
		if cfg.Site() != "fr.wikipedia.org" {
			t.Errorf("Site() = %q", cfg.Site())
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("language: [de"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil || errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Load() error = %v, want parse error", err)
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, _ := Load(path)
	cfg.Theme = "dark"
	cfg.TextSize = 2
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Theme != "dark" || got.TextSize != 2 || got.Timeout != DefaultTimeout {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDataPath(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.DataPath() != XDGDataDir() {
		t.Errorf("DataPath() = %q", cfg.DataPath())
	}
	cfg.DataDir = "/tmp/wikisurf"
	if cfg.DataPath() != "/tmp/wikisurf" {
		t.Errorf("DataPath() override = %q", cfg.DataPath())
	}
}
