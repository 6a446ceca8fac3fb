package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SessionRecord is one reading session's funnel counters.
type SessionRecord struct {
	ID           string
	StartedAt    time.Time
	LastAt       time.Time
	PageViews    int
	BackPresses  int
	SearchTaps   int
	FeaturedTaps int
	// Sources counts page views per provenance name.
	Sources map[string]int
}

// SessionStore keeps finished and in-progress sessions.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a session store on db.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession inserts or updates a session.
func (s *SessionStore) SaveSession(ctx context.Context, r SessionRecord) error {
	sources, err := json.Marshal(r.Sources)
	if err != nil {
		return fmt.Errorf("encoding session sources: %w", err)
	}
	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, last_at, page_views, back_presses, search_taps, featured_taps, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_at = excluded.last_at,
			page_views = excluded.page_views,
			back_presses = excluded.back_presses,
			search_taps = excluded.search_taps,
			featured_taps = excluded.featured_taps,
			sources = excluded.sources`,
		r.ID, millis(r.StartedAt), millis(r.LastAt), r.PageViews, r.BackPresses,
		r.SearchTaps, r.FeaturedTaps, string(sources))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Sessions returns up to limit sessions, most recent first.
func (s *SessionStore) Sessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT id, started_at, last_at, page_views, back_presses, search_taps, featured_taps, sources
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			r             SessionRecord
			started, last int64
			sources       string
		)
		if err := rows.Scan(&r.ID, &started, &last, &r.PageViews, &r.BackPresses,
			&r.SearchTaps, &r.FeaturedTaps, &sources); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		r.StartedAt, r.LastAt = fromMillis(started), fromMillis(last)
		if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
			return nil, fmt.Errorf("decoding session sources: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
