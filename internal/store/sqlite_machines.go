package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/izzyreal/washboard/internal/config"
)

type Machine struct {
	ID            int64
	Name          string
	MaxConcurrent int
}

func (s *Store) ListMachines() ([]Machine, error) {
	return listMachines(s.db)
}

func listMachines(q execQuerier) ([]Machine, error) {
	rows, err := q.Query(`SELECT id, name, max_concurrent FROM machine ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	defer rows.Close()

	var out []Machine
	for rows.Next() {
		var m Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.MaxConcurrent); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		m.MaxConcurrent = max(m.MaxConcurrent, 1)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machines: %w", err)
	}
	return out, nil
}

// EnsureMachines creates the listed machines that do not exist yet and
// returns how many were created. Existing machines are left alone. Creating
// any machine bumps the last-update marker.
func (s *Store) EnsureMachines(machines []config.Machine, now time.Time) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, m := range machines {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		maxConcurrent := max(m.MaxConcurrent, 1)
		res, err := tx.Exec(`INSERT INTO machine (name, max_concurrent) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`, name, maxConcurrent)
		if err != nil {
			return 0, fmt.Errorf("insert machine %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	if created > 0 {
		if _, err := touchLastUpdate(tx, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}
