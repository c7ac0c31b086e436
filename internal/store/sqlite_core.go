package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is the dashboard's SQLite state. The schema is shared with the
// reservation front end that writes machines and reservations; this package
// reads them, maintains queue-front markers and owns the last-update marker.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS machine (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			max_concurrent INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS reservation (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			machine_id INTEGER NOT NULL,
			user TEXT NOT NULL,
			start_ts TEXT,
			duration_min INTEGER,
			finished INTEGER NOT NULL DEFAULT 0,
			front_since_ts TEXT,
			remarks TEXT,
			FOREIGN KEY(machine_id) REFERENCES machine(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reservation_machine_finished ON reservation(machine_id, finished);`,
		`CREATE TABLE IF NOT EXISTS op_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			user TEXT NOT NULL,
			machine TEXT,
			op TEXT NOT NULL,
			detail TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	// Databases created before concurrent machines and queue-front timers
	// lack these columns.
	if err := s.addColumnIfMissing("machine", "max_concurrent", "INTEGER NOT NULL DEFAULT 1"); err != nil {
		return err
	}
	if err := s.addColumnIfMissing("reservation", "front_since_ts", "TEXT"); err != nil {
		return err
	}
	if err := s.addColumnIfMissing("reservation", "remarks", "TEXT"); err != nil {
		return err
	}
	if err := s.addColumnIfMissing("op_log", "machine", "TEXT"); err != nil {
		return err
	}
	return nil
}

func (s *Store) addColumnIfMissing(table, col, typ string) error {
	_, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col, typ))
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
		return fmt.Errorf("add column %s.%s: %w", table, col, err)
	}
	return nil
}
