// Package storage persists which birthday reminders already fired, so a
// process restart within the same day does not deliver duplicates.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS fired_reminders (
	day  TEXT NOT NULL,
	name TEXT NOT NULL,
	days INTEGER NOT NULL,
	PRIMARY KEY (day, name, days)
);`

// Ledger is a SQLite-backed set of fired reminder keys.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (or creates) the ledger database at the given path.
func NewLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// MarkFired records that the reminder for (name, daysUntil) fired on the
// given day. It returns true when this call inserted the record, false when
// the reminder had already fired that day.
func (l *Ledger) MarkFired(day time.Time, name string, daysUntil int) (bool, error) {
	key := day.Format("2006-01-02")
	res, err := l.db.Exec(
		"INSERT OR IGNORE INTO fired_reminders (day, name, days) VALUES (?, ?, ?)",
		key, name, daysUntil,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// Prune drops entries older than the given day, keeping the file small.
func (l *Ledger) Prune(before time.Time) error {
	_, err := l.db.Exec("DELETE FROM fired_reminders WHERE day < ?", before.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to prune ledger: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
