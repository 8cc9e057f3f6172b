package memory

import (
	"context"
	"fmt"
)

// TurnLog is the append-only, date-partitioned store of conversational turns.
type TurnLog struct {
	db *DB
}

// NewTurnLog creates a TurnLog on the given database.
func NewTurnLog(db *DB) *TurnLog {
	return &TurnLog{db: db}
}

// Append persists every turn not yet marked saved, in order, within one
// transaction, and marks them saved in place after the commit succeeds.
// Calling it again with no new unsaved turns performs no writes. On failure
// the saved flags are left untouched so the next flush retries the same turns.
func (l *TurnLog) Append(ctx context.Context, turns []*Turn) error {
	var pending []*Turn
	for _, t := range turns {
		if !t.Saved {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	tx, err := l.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range pending {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (date, role, content) VALUES (?, ?, ?)`,
			t.Date, t.Role, t.Content); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turns: %w", err)
	}

	for _, t := range pending {
		t.Saved = true
	}
	return nil
}

// Restore returns all turns for a date in storage order, flagged saved.
func (l *TurnLog) Restore(ctx context.Context, date string) ([]*Turn, error) {
	rows, err := l.db.sql.QueryContext(ctx,
		`SELECT date, role, content FROM turns WHERE date = ? ORDER BY rowid`, date)
	if err != nil {
		return nil, fmt.Errorf("restore turns: %w", err)
	}
	defer rows.Close()

	var turns []*Turn
	for rows.Next() {
		t := &Turn{Saved: true}
		if err := rows.Scan(&t.Date, &t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Dates returns the distinct dates present in the log, oldest first.
func (l *TurnLog) Dates(ctx context.Context) ([]string, error) {
	rows, err := l.db.sql.QueryContext(ctx, `SELECT DISTINCT date FROM turns ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
