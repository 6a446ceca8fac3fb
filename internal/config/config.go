// Package config loads the reader's settings from a YAML file under the
// XDG config directory. Flags given on the command line are applied on top
// by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/pagecache"
	"github.com/vidyasagar/wikisurf/internal/theme"
)

// AppName names the XDG directories.
const AppName = "wikisurf"

const (
	DefaultLanguage      = "en"
	DefaultTimeout       = 20 * time.Second
	DefaultPrefetchLinks = 3
	DefaultAPIScheme     = "https"
	DefaultUserAgent     = "wikisurf/1.0 (https://github.com/vidyasagar/wikisurf)"

	// MinTextSize and MaxTextSize bound the text size step.
	MinTextSize = -3
	MaxTextSize = 3
)

// Config holds user settings.
type Config struct {
	Language      string        `yaml:"language"`
	Theme         string        `yaml:"theme"`
	TextSize      int           `yaml:"text_size"`
	CacheCapacity int64         `yaml:"cache_capacity"`
	PrefetchLinks int           `yaml:"prefetch_links"`
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	APIScheme     string        `yaml:"api_scheme"`
	DataDir       string        `yaml:"data_dir,omitempty"`

	path string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Language:      DefaultLanguage,
		Theme:         theme.DefaultName,
		CacheCapacity: pagecache.DefaultCapacity,
		PrefetchLinks: DefaultPrefetchLinks,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		APIScheme:     DefaultAPIScheme,
	}
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// XDGDataDir returns the directory holding the database and saved state.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGStateDir returns the directory holding the log file.
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// Load reads path over the defaults. A missing file returns
// ErrConfigNotFound alongside the defaults, so callers that do not care
// can carry on with the returned config.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, ErrConfigNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from, or to
// DefaultPath.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Validate returns the first problem found.
func (c *Config) Validate() error {
	tag, err := language.Parse(c.Language)
	if err != nil || tag == language.Und {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}
	if !theme.Has(c.Theme) {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, c.Theme)
	}
	if c.TextSize < MinTextSize || c.TextSize > MaxTextSize {
		return ErrInvalidTextSize
	}
	if c.CacheCapacity <= 0 {
		return ErrInvalidCacheCapacity
	}
	if c.PrefetchLinks < 0 {
		return ErrInvalidPrefetch
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.APIScheme != "https" && c.APIScheme != "http" {
		return fmt.Errorf("%w: %q", ErrInvalidScheme, c.APIScheme)
	}
	return nil
}

// Site returns the primary wiki domain for the configured language.
func (c *Config) Site() string {
	return page.SiteFor(c.Language)
}

// DataPath returns the data directory, honouring an override.
func (c *Config) DataPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return XDGDataDir()
}
