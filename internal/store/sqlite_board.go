package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is one unfinished reservation as shown on the board.
type Entry struct {
	ID      int64
	User    string
	Remarks string

	Started bool
	// Start, End and GraceEnd are zero when the reservation has not started
	// or its stored start cannot be parsed.
	Start    time.Time
	End      time.Time
	GraceEnd time.Time

	// Startable marks a waiting reservation that fits in a free slot now.
	// FrontSince is when it became startable.
	Startable  bool
	FrontSince time.Time
}

type MachineQueue struct {
	Machine
	Running int
	Waiting int
	// Entries lists running reservations by start time, then waiting ones
	// in arrival order.
	Entries []Entry
}

type Board struct {
	ServerNow    time.Time
	LastUpdateMS int64
	Machines     []MachineQueue
}

type reservationRow struct {
	id          int64
	user        string
	startTS     sql.NullString
	durationMin sql.NullInt64
	frontSince  sql.NullString
	remarks     sql.NullString
}

// Board assembles every machine's queue as of now. Waiting reservations
// that became startable get their front-since marker set to now and ones
// that stopped being startable have it cleared; either change bumps the
// last-update marker so other viewers reload. grace is added to a running
// reservation's end to get the end of its pickup window.
func (s *Store) Board(now time.Time, grace time.Duration) (Board, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Board{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	machines, err := listMachines(tx)
	if err != nil {
		return Board{}, err
	}

	board := Board{ServerNow: now, Machines: make([]MachineQueue, 0, len(machines))}
	mutated := false
	for _, m := range machines {
		rows, err := unfinishedReservations(tx, m.ID)
		if err != nil {
			return Board{}, err
		}

		var running, waiting []reservationRow
		for _, r := range rows {
			if r.startTS.Valid {
				running = append(running, r)
			} else {
				waiting = append(waiting, r)
			}
		}
		sortRunning(running)
		sort.SliceStable(waiting, func(i, j int) bool { return waiting[i].id < waiting[j].id })

		slots := max(0, m.MaxConcurrent-len(running))
		q := MachineQueue{Machine: m, Running: len(running), Waiting: len(waiting)}
		for _, r := range running {
			q.Entries = append(q.Entries, runningEntry(r, grace))
		}
		for i, r := range waiting {
			e := Entry{ID: r.id, User: r.user, Remarks: strings.TrimSpace(r.remarks.String)}
			since, hasSince := parseTS(r.frontSince)
			switch startable := i < slots; {
			case startable && !r.frontSince.Valid:
				if _, err := tx.Exec(`UPDATE reservation SET front_since_ts = ? WHERE id = ?`, formatTS(now), r.id); err != nil {
					return Board{}, fmt.Errorf("set front since: %w", err)
				}
				mutated = true
				e.Startable, e.FrontSince = true, now.Truncate(time.Second)
			case startable:
				e.Startable = true
				if hasSince {
					e.FrontSince = since
				}
			case r.frontSince.Valid:
				if _, err := tx.Exec(`UPDATE reservation SET front_since_ts = NULL WHERE id = ?`, r.id); err != nil {
					return Board{}, fmt.Errorf("clear front since: %w", err)
				}
				mutated = true
			}
			q.Entries = append(q.Entries, e)
		}
		board.Machines = append(board.Machines, q)
	}

	if mutated {
		if _, err := touchLastUpdate(tx, now); err != nil {
			return Board{}, err
		}
	}
	ms, ok, err := lastUpdateMS(tx)
	if err != nil {
		return Board{}, err
	}
	if !ok {
		ms = now.UnixMilli()
	}
	board.LastUpdateMS = ms

	if err := tx.Commit(); err != nil {
		return Board{}, fmt.Errorf("commit tx: %w", err)
	}
	return board, nil
}

func runningEntry(r reservationRow, grace time.Duration) Entry {
	e := Entry{ID: r.id, User: r.user, Remarks: strings.TrimSpace(r.remarks.String), Started: true}
	start, ok := parseTS(r.startTS)
	if !ok || !r.durationMin.Valid {
		return e
	}
	e.Start = start
	e.End = start.Add(time.Duration(r.durationMin.Int64) * time.Minute)
	e.GraceEnd = e.End.Add(grace)
	return e
}

// sortRunning orders by start time, then id. Unparsable starts sort last.
func sortRunning(rows []reservationRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, oki := parseTS(rows[i].startTS)
		tj, okj := parseTS(rows[j].startTS)
		switch {
		case oki && okj && !ti.Equal(tj):
			return ti.Before(tj)
		case oki != okj:
			return oki
		default:
			return rows[i].id < rows[j].id
		}
	})
}

func unfinishedReservations(tx *sql.Tx, machineID int64) ([]reservationRow, error) {
	rows, err := tx.Query(`
		SELECT id, user, start_ts, duration_min, front_since_ts, remarks
		FROM reservation
		WHERE machine_id = ? AND finished = 0
	`, machineID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []reservationRow
	for rows.Next() {
		var r reservationRow
		if err := rows.Scan(&r.id, &r.user, &r.startTS, &r.durationMin, &r.frontSince, &r.remarks); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}
