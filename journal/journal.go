// Package journal persists the audit trail: every convergence action
// and every successful pairing, with timestamps. Trusted-device
// selection reads the pairing history back from here.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	resource TEXT NOT NULL,
	action   TEXT NOT NULL,
	outcome  TEXT NOT NULL,
	detail   TEXT NOT NULL DEFAULT '',
	at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pairings (
	address   TEXT PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	paired_at TEXT NOT NULL
);
`

// Journal is the SQLite-backed audit store.
type Journal struct {
	db *sql.DB
}

// Open creates the journal database and schema if needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Action is one audited convergence event.
type Action struct {
	Resource string
	Action   string
	Outcome  string
	Detail   string
	At       time.Time
}

// RecordAction appends one audit row.
func (j *Journal) RecordAction(resource, action, outcome, detail string) error {
	_, err := j.db.Exec(
		`INSERT INTO actions (resource, action, outcome, detail, at) VALUES (?, ?, ?, ?, ?)`,
		resource, action, outcome, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// RecentActions returns up to limit rows, newest first.
func (j *Journal) RecentActions(limit int) ([]Action, error) {
	rows, err := j.db.Query(
		`SELECT resource, action, outcome, detail, at FROM actions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var at string
		if err := rows.Scan(&a.Resource, &a.Action, &a.Outcome, &a.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecordPairing upserts a paired device with the current time.
func (j *Journal) RecordPairing(address, name string) error {
	_, err := j.db.Exec(
		`INSERT INTO pairings (address, name, paired_at) VALUES (?, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET name = excluded.name, paired_at = excluded.paired_at`,
		address, name, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record pairing: %w", err)
	}
	return nil
}

// LastPaired returns when the device at address last paired.
func (j *Journal) LastPaired(address string) (time.Time, bool) {
	var at string
	err := j.db.QueryRow(`SELECT paired_at FROM pairings WHERE address = ?`, address).Scan(&at)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
