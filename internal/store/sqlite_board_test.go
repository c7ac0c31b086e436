package store

import (
	"database/sql"
	"testing"
	"time"
)

func frontSince(t *testing.T, s *Store, id int64) sql.NullString {
	t.Helper()
	var v sql.NullString
	if err := s.db.QueryRow(`SELECT front_since_ts FROM reservation WHERE id = ?`, id).Scan(&v); err != nil {
		t.Fatalf("read front since: %v", err)
	}
	return v
}

func TestBoardOrdersAndDerivesDeadlines(t *testing.T) {
	s := openTestStore(t)
	washer := addMachine(t, s, "Washer", 2)

	late := addRunning(t, s, washer, "late", testNow.Add(-10*time.Minute), 45)
	early := addRunning(t, s, washer, "early", testNow.Add(-50*time.Minute), 60)
	w1 := addWaiting(t, s, washer, "w1")
	w2 := addWaiting(t, s, washer, "w2")
	finished := addWaiting(t, s, washer, "done")
	mustExec(t, s, `UPDATE reservation SET finished = 1 WHERE id = ?`, finished)

	b, err := s.Board(testNow, 30*time.Minute)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(b.Machines) != 1 {
		t.Fatalf("machines %d", len(b.Machines))
	}
	q := b.Machines[0]
	if q.Running != 2 || q.Waiting != 2 {
		t.Fatalf("counts running=%d waiting=%d", q.Running, q.Waiting)
	}
	ids := []int64{}
	for _, e := range q.Entries {
		ids = append(ids, e.ID)
	}
	if want := []int64{early, late, w1, w2}; len(ids) != 4 || ids[0] != want[0] || ids[1] != want[1] || ids[2] != want[2] || ids[3] != want[3] {
		t.Fatalf("order %v want %v", ids, want)
	}

	e := q.Entries[0]
	if !e.Started || !e.End.Equal(testNow.Add(10*time.Minute)) || !e.GraceEnd.Equal(testNow.Add(40*time.Minute)) {
		t.Fatalf("early entry deadlines: %+v", e)
	}
	// Both slots are taken, so nobody waiting may start.
	for _, e := range q.Entries[2:] {
		if e.Startable || !e.FrontSince.IsZero() {
			t.Fatalf("waiting entry must not be startable: %+v", e)
		}
	}
	if b.LastUpdateMS != testNow.UnixMilli() {
		t.Fatalf("last update falls back to server now, got %d", b.LastUpdateMS)
	}
}

func TestBoardMaintainsFrontSince(t *testing.T) {
	s := openTestStore(t)
	washer := addMachine(t, s, "Washer", 1)
	w1 := addWaiting(t, s, washer, "w1")
	w2 := addWaiting(t, s, washer, "w2")

	b, err := s.Board(testNow, 30*time.Minute)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	entries := b.Machines[0].Entries
	if !entries[0].Startable || !entries[0].FrontSince.Equal(testNow) {
		t.Fatalf("w1 should be startable since now: %+v", entries[0])
	}
	if entries[1].Startable {
		t.Fatalf("w2 must wait: %+v", entries[1])
	}
	if got := frontSince(t, s, w1); !got.Valid || got.String != formatTS(testNow) {
		t.Fatalf("w1 front_since_ts %+v", got)
	}
	if b.LastUpdateMS != testNow.UnixMilli() {
		t.Fatalf("marking w1 must bump last update, got %d", b.LastUpdateMS)
	}

	// A second look later keeps the earlier front-since and changes nothing.
	later := testNow.Add(5 * time.Minute)
	b, err = s.Board(later, 30*time.Minute)
	if err != nil {
		t.Fatalf("board again: %v", err)
	}
	if got := b.Machines[0].Entries[0].FrontSince; !got.Equal(testNow) {
		t.Fatalf("front since moved to %v", got)
	}
	if b.LastUpdateMS != testNow.UnixMilli() {
		t.Fatalf("unchanged board must not bump last update, got %d", b.LastUpdateMS)
	}

	// w1 starts and takes the only slot, so w2 still waits.
	mustExec(t, s, `UPDATE reservation SET start_ts = ?, duration_min = 40, front_since_ts = NULL WHERE id = ?`, formatTS(later), w1)
	b, err = s.Board(later, 30*time.Minute)
	if err != nil {
		t.Fatalf("board after start: %v", err)
	}
	q := b.Machines[0]
	if q.Running != 1 || q.Entries[1].ID != w2 || q.Entries[1].Startable {
		t.Fatalf("after start: %+v", q)
	}

	// Raising capacity makes w2 startable.
	mustExec(t, s, `UPDATE machine SET max_concurrent = 2 WHERE id = ?`, washer)
	evenLater := later.Add(time.Minute)
	b, err = s.Board(evenLater, 30*time.Minute)
	if err != nil {
		t.Fatalf("board after capacity change: %v", err)
	}
	if e := b.Machines[0].Entries[1]; !e.Startable || !e.FrontSince.Equal(evenLater) {
		t.Fatalf("w2 should be startable: %+v", e)
	}
	if b.LastUpdateMS != evenLater.UnixMilli() {
		t.Fatalf("last update %d want %d", b.LastUpdateMS, evenLater.UnixMilli())
	}

	// Lowering capacity again clears w2's marker.
	mustExec(t, s, `UPDATE machine SET max_concurrent = 1 WHERE id = ?`, washer)
	if _, err := s.Board(evenLater.Add(time.Minute), 30*time.Minute); err != nil {
		t.Fatalf("board after capacity drop: %v", err)
	}
	if got := frontSince(t, s, w2); got.Valid {
		t.Fatalf("w2 front since should be cleared, got %+v", got)
	}
}

func TestBoardUnparsableStart(t *testing.T) {
	s := openTestStore(t)
	washer := addMachine(t, s, "Washer", 1)
	ok := addRunning(t, s, washer, "ok", testNow, 30)
	bad := addWaiting(t, s, washer, "bad")
	mustExec(t, s, `UPDATE reservation SET start_ts = 'yesterday-ish', duration_min = 30 WHERE id = ?`, bad)

	b, err := s.Board(testNow, time.Minute)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	entries := b.Machines[0].Entries
	if entries[0].ID != ok || entries[1].ID != bad {
		t.Fatalf("unparsable start should sort last: %+v", entries)
	}
	if !entries[1].Started || !entries[1].End.IsZero() {
		t.Fatalf("unparsable start must leave deadlines unset: %+v", entries[1])
	}
}
