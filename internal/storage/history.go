package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
)

// HistoryEntry represents a single visited page.
type HistoryEntry struct {
	ID        int64
	Title     page.Title
	Source    nav.Provenance
	VisitedAt time.Time
}

// historyQueue bounds visits waiting for the writer.
const historyQueue = 64

// HistoryStore keeps the reading history. It is the controller's history
// recorder: Record queues the visit for a single background writer, so
// visits land in order without the caller touching the database.
type HistoryStore struct {
	db  *DB
	log *slog.Logger

	queue chan visit
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// visit is a queued Record call. A visit with flushed set only marks a
// point in the queue.
type visit struct {
	title   page.Title
	source  nav.Provenance
	at      time.Time
	flushed chan struct{}
}

// NewHistoryStore creates a history store on db and starts its writer.
// Close stops the writer.
func NewHistoryStore(db *DB, log *slog.Logger) *HistoryStore {
	if log == nil {
		log = slog.Default()
	}
	hs := &HistoryStore{
		db:    db,
		log:   log,
		queue: make(chan visit, historyQueue),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go hs.write()
	return hs
}

// Record queues a visit and returns at once. Failures are logged; a full
// queue drops the visit.
func (hs *HistoryStore) Record(t page.Title, p nav.Provenance, at time.Time) {
	select {
	case <-hs.stop:
		hs.log.Debug("history closed, visit dropped", "title", t.String())
		return
	default:
	}
	select {
	case hs.queue <- visit{title: t, source: p, at: at}:
	default:
		hs.log.Warn("history queue full, visit dropped", "title", t.String())
	}
}

// Flush waits until every visit queued before the call is written.
func (hs *HistoryStore) Flush(ctx context.Context) error {
	mark := make(chan struct{})
	select {
	case hs.queue <- visit{flushed: mark}:
	case <-hs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-mark:
		return nil
	case <-hs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes the queued visits and stops the writer.
func (hs *HistoryStore) Close() {
	hs.once.Do(func() { close(hs.stop) })
	<-hs.done
}

func (hs *HistoryStore) write() {
	defer close(hs.done)
	for {
		select {
		case v := <-hs.queue:
			hs.store(v)
		case <-hs.stop:
			for {
				select {
				case v := <-hs.queue:
					hs.store(v)
				default:
					return
				}
			}
		}
	}
}

func (hs *HistoryStore) store(v visit) {
	if v.flushed != nil {
		close(v.flushed)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Add(ctx, v.title, v.source, v.at); err != nil {
		hs.log.Warn("recording history failed", "title", v.title.String(), "error", err)
	}
}

// Add records a page visit. If the page is already the most recent entry,
// its timestamp and source are updated instead of adding a duplicate.
func (hs *HistoryStore) Add(ctx context.Context, t page.Title, p nav.Provenance, at time.Time) error {
	var (
		id          int64
		site, title string
	)
	err := hs.db.conn.QueryRowContext(ctx,
		`SELECT id, site, title FROM history ORDER BY visited_at DESC, id DESC LIMIT 1`,
	).Scan(&id, &site, &title)
	switch {
	case err == nil && site == t.Site && title == t.Text:
		_, err = hs.db.conn.ExecContext(ctx,
			`UPDATE history SET visited_at = ?, source = ? WHERE id = ?`,
			millis(at), p.String(), id)
		if err != nil {
			return fmt.Errorf("updating history: %w", err)
		}
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("reading history: %w", err)
	}

	_, err = hs.db.conn.ExecContext(ctx,
		`INSERT INTO history (site, title, source, visited_at) VALUES (?, ?, ?, ?)`,
		t.Site, t.Text, p.String(), millis(at))
	if err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Queued visits are
// written first, as for the other reads below.
func (hs *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if err := hs.Flush(ctx); err != nil {
		return nil, err
	}
	return hs.query(ctx,
		`SELECT id, site, title, source, visited_at FROM history
		 ORDER BY visited_at DESC, id DESC LIMIT ?`, limit)
}

// Search finds entries whose title contains query, newest first.
func (hs *HistoryStore) Search(ctx context.Context, query string, limit int) ([]HistoryEntry, error) {
	if err := hs.Flush(ctx); err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return hs.query(ctx,
		`SELECT id, site, title, source, visited_at FROM history
		 WHERE title LIKE ? ESCAPE '\'
		 ORDER BY visited_at DESC, id DESC LIMIT ?`, pattern, limit)
}

// Remove deletes one entry.
func (hs *HistoryStore) Remove(ctx context.Context, id int64) error {
	if err := hs.Flush(ctx); err != nil {
		return err
	}
	_, err := hs.db.conn.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	return err
}

// Clear removes all history entries.
func (hs *HistoryStore) Clear(ctx context.Context) error {
	if err := hs.Flush(ctx); err != nil {
		return err
	}
	_, err := hs.db.conn.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// Count returns the number of history entries.
func (hs *HistoryStore) Count(ctx context.Context) (int, error) {
	if err := hs.Flush(ctx); err != nil {
		return 0, err
	}
	var n int
	err := hs.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n)
	return n, err
}

func (hs *HistoryStore) query(ctx context.Context, q string, args ...any) ([]HistoryEntry, error) {
	rows, err := hs.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e                   HistoryEntry
			site, title, source string
			at                  int64
		)
		if err := rows.Scan(&e.ID, &site, &title, &source, &at); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Title = page.Title{Site: site, Text: title}
		e.Source, _ = nav.ParseProvenance(source)
		e.VisitedAt = fromMillis(at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
