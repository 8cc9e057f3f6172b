package memory

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite database holding the turn log and the summary store.
type DB struct {
	sql *sql.DB
}

// OpenDB opens (or creates) the database at path and runs migrations.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	d := &DB{sql: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			date TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_date ON turns(date)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			topic TEXT NOT NULL,
			summary TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_date ON summaries(date)`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 40)], err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.sql.Close()
}
