package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const lastUpdateKey = "last_update_ms"

type execQuerier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func setMeta(q execQuerier, key, value string) error {
	if _, err := q.Exec(`
		INSERT INTO meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, key, value); err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func getMeta(q execQuerier, key string) (string, bool, error) {
	var value sql.NullString
	row := q.QueryRow(`SELECT value FROM meta WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// LastUpdateMS returns the marker bumped on every state change, in epoch
// milliseconds. ok is false when no marker has been written yet or the stored
// value is not an integer.
func (s *Store) LastUpdateMS() (ms int64, ok bool, err error) {
	return lastUpdateMS(s.db)
}

func lastUpdateMS(q execQuerier) (int64, bool, error) {
	raw, ok, err := getMeta(q, lastUpdateKey)
	if err != nil || !ok {
		return 0, false, err
	}
	ms, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if perr != nil {
		return 0, false, nil
	}
	return ms, true, nil
}

// TouchLastUpdate records a state change at now and returns the new marker.
// The marker never moves backwards: when now is not after the stored value,
// the stored value plus one is used so that clients still see a change.
func (s *Store) TouchLastUpdate(now time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ms, err := touchLastUpdate(tx, now)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return ms, nil
}

func touchLastUpdate(q execQuerier, now time.Time) (int64, error) {
	next := now.UnixMilli()
	prev, ok, err := lastUpdateMS(q)
	if err != nil {
		return 0, err
	}
	if ok && next <= prev {
		next = prev + 1
	}
	if err := setMeta(q, lastUpdateKey, strconv.FormatInt(next, 10)); err != nil {
		return 0, err
	}
	return next, nil
}
