package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// SummaryStore is the keyed store of consolidated topic summaries. It is also
// the id allocator shared with the embedding index: ids handed out by NextID
// are used for both, so the two stay in one id space.
type SummaryStore struct {
	db *DB

	// Id allocation is serialized and tracked with an in-process high-water
	// mark so two consolidation batches running back to back can never be
	// handed the same id, even before their first insert lands.
	allocMu   sync.Mutex
	lastAlloc int
}

// NewSummaryStore creates a SummaryStore on the given database.
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Get returns the summary with the given id, or ErrNotFound.
func (s *SummaryStore) Get(ctx context.Context, id int) (*Summary, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT id, date, topic, summary FROM summaries WHERE id = ?`, id)

	sum := &Summary{}
	if err := row.Scan(&sum.ID, &sum.Date, &sum.Topic, &sum.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary %d: %w", id, err)
	}
	return sum, nil
}

// NextID allocates the next summary id: one greater than the current maximum,
// or 1 if the store is empty. Allocations are remembered in-process, so
// repeated calls return strictly increasing ids even before the rows exist.
func (s *SummaryStore) NextID(ctx context.Context) (int, error) {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	var max sql.NullInt64
	row := s.db.sql.QueryRowContext(ctx, `SELECT MAX(id) FROM summaries`)
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}

	next := int(max.Int64) + 1
	if next <= s.lastAlloc {
		next = s.lastAlloc + 1
	}
	s.lastAlloc = next
	return next, nil
}

// Upsert inserts or replaces a summary by id.
func (s *SummaryStore) Upsert(ctx context.Context, sum *Summary) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO summaries (id, date, topic, summary) VALUES (?, ?, ?, ?)`,
		sum.ID, sum.Date, sum.Topic, sum.Text)
	if err != nil {
		return fmt.Errorf("upsert summary %d: %w", sum.ID, err)
	}
	return nil
}

// DeleteByDate removes all summaries for a date. Removing none is not an error.
func (s *SummaryStore) DeleteByDate(ctx context.Context, date string) error {
	if _, err := s.db.sql.ExecContext(ctx, `DELETE FROM summaries WHERE date = ?`, date); err != nil {
		return fmt.Errorf("delete summaries for %s: %w", date, err)
	}
	return nil
}

// IDsByDate returns the ids of all summaries for a date.
func (s *SummaryStore) IDsByDate(ctx context.Context, date string) ([]int, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id FROM summaries WHERE date = ? ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("ids for %s: %w", date, err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountForDate returns how many summaries exist for a date.
func (s *SummaryStore) CountForDate(ctx context.Context, date string) (int, error) {
	var n int
	row := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries WHERE date = ?`, date)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count summaries for %s: %w", date, err)
	}
	return n, nil
}

// ByDate returns all summaries for a date in id order.
func (s *SummaryStore) ByDate(ctx context.Context, date string) ([]*Summary, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, date, topic, summary FROM summaries WHERE date = ? ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("summaries for %s: %w", date, err)
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		sum := &Summary{}
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.Topic, &sum.Text); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
