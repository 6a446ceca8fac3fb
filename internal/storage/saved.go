package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// ErrNotSaved is returned for a page that is not in the saved pages.
var ErrNotSaved = errors.New("page not saved")

// SavedPage is an article kept for offline reading.
type SavedPage struct {
	Title   page.Title
	HTML    string
	SavedAt time.Time
}

// SavedPageStore keeps saved pages. The wiki client reads from it before
// going to the network.
type SavedPageStore struct {
	db *DB
}

// NewSavedPageStore creates a saved page store on db.
func NewSavedPageStore(db *DB) *SavedPageStore {
	return &SavedPageStore{db: db}
}

// Save stores html for t, replacing an older copy.
func (s *SavedPageStore) Save(ctx context.Context, t page.Title, html string, at time.Time) error {
	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO saved_pages (site, title, html, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(site, title) DO UPDATE SET html = excluded.html, saved_at = excluded.saved_at`,
		t.Site, t.Text, html, millis(at))
	if err != nil {
		return fmt.Errorf("saving page: %w", err)
	}
	return nil
}

// Get returns a saved page.
func (s *SavedPageStore) Get(ctx context.Context, key page.Key) (SavedPage, error) {
	var (
		sp SavedPage
		at int64
	)
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT html, saved_at FROM saved_pages WHERE site = ? AND title = ?`,
		key.Site, key.Text,
	).Scan(&sp.HTML, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedPage{}, fmt.Errorf("%w: %s", ErrNotSaved, key)
	}
	if err != nil {
		return SavedPage{}, fmt.Errorf("reading saved page: %w", err)
	}
	sp.Title = page.Title{Site: key.Site, Text: key.Text}
	sp.SavedAt = fromMillis(at)
	return sp, nil
}

// SavedHTML returns the saved copy of a page, if any.
func (s *SavedPageStore) SavedHTML(ctx context.Context, key page.Key) (string, bool, error) {
	sp, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotSaved) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sp.HTML, true, nil
}

// Has reports whether a page is saved.
func (s *SavedPageStore) Has(ctx context.Context, key page.Key) bool {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_pages WHERE site = ? AND title = ?`,
		key.Site, key.Text).Scan(&n)
	return err == nil && n > 0
}

// List returns saved pages newest first, without their content.
func (s *SavedPageStore) List(ctx context.Context) ([]SavedPage, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT site, title, saved_at FROM saved_pages ORDER BY saved_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saved pages: %w", err)
	}
	defer rows.Close()

	var pages []SavedPage
	for rows.Next() {
		var (
			site, title string
			at          int64
		)
		if err := rows.Scan(&site, &title, &at); err != nil {
			return nil, fmt.Errorf("scanning saved page: %w", err)
		}
		pages = append(pages, SavedPage{Title: page.Title{Site: site, Text: title}, SavedAt: fromMillis(at)})
	}
	return pages, rows.Err()
}

// Remove deletes a saved page.
func (s *SavedPageStore) Remove(ctx context.Context, key page.Key) error {
	res, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM saved_pages WHERE site = ? AND title = ?`, key.Site, key.Text)
	if err != nil {
		return fmt.Errorf("removing saved page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotSaved, key)
	}
	return nil
}
