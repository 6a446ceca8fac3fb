// Package log builds the reader's slog loggers. Records pass through a
// redacting handler so request headers and session identifiers never
// reach the log file in clear text.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaskValue replaces redacted attribute values.
const MaskValue = "***REDACTED***"

var sensitiveKeys = map[string]bool{
	"authorization":  true,
	"cookie":         true,
	"set-cookie":     true,
	"password":       true,
	"token":          true,
	"access_token":   true,
	"session":        true,
	"session_id":     true,
	"sessionid":      true,
	"x-carrier-meta": true,
}

var sensitiveKeywords = []string{"password", "secret", "token", "auth", "credential"}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// SecureHandler masks sensitive attributes before passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler means slog.Default's.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitize(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitize(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(clean)}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitize(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, g := range group {
			clean[i] = sanitize(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] {
		return slog.String(a.Key, MaskValue)
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return slog.String(a.Key, MaskValue)
		}
	}
	if a.Value.Kind() == slog.KindString {
		v := a.Value.String()
		for _, p := range sensitivePatterns {
			if p.MatchString(v) {
				return slog.String(a.Key, MaskValue)
			}
		}
	}
	return a
}

// New returns a redacting text logger writing to w. Verbose lowers the
// level from Warn to Debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// OpenFile opens (appending) the log file at path and returns a logger
// over it. The terminal belongs to the TUI, so the reader never logs to
// stderr while it runs. The caller closes the returned file.
func OpenFile(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, verbose), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
