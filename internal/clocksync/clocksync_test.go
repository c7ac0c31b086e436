package clocksync

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var testStart = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestInitializeWithServerTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	s := New(clock)

	local := testStart.UnixMilli()
	s.Initialize(At(local+5000), At(local-60_000))

	if got := s.Offset(); got != 5*time.Second {
		t.Fatalf("offset: got %v want 5s", got)
	}
	if got := s.CorrectedNowMS(); got != local+5000 {
		t.Fatalf("corrected now: got %d want %d", got, local+5000)
	}
	if got := s.LatestUpdate(); got != At(local-60_000) {
		t.Fatalf("latest update: got %+v", got)
	}
	if !s.Synced() {
		t.Fatalf("expected synced after server time")
	}
}

func TestInitializeFallbacks(t *testing.T) {
	local := testStart.UnixMilli()
	cases := []struct {
		name       string
		serverNow  Stamp
		lastUpdate Stamp
		wantOffset time.Duration
		wantLatest Stamp
		wantSynced bool
	}{
		{name: "last update falls back to server now", serverNow: At(local + 250), wantOffset: 250 * time.Millisecond, wantLatest: At(local + 250), wantSynced: true},
		{name: "no server time keeps zero offset", lastUpdate: At(42), wantLatest: At(42)},
		{name: "nothing at all", wantLatest: Stamp{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(clockwork.NewFakeClockAt(testStart))
			s.Initialize(tc.serverNow, tc.lastUpdate)
			if got := s.Offset(); got != tc.wantOffset {
				t.Fatalf("offset: got %v want %v", got, tc.wantOffset)
			}
			if got := s.LatestUpdate(); got != tc.wantLatest {
				t.Fatalf("latest: got %+v want %+v", got, tc.wantLatest)
			}
			if got := s.Synced(); got != tc.wantSynced {
				t.Fatalf("synced: got %v want %v", got, tc.wantSynced)
			}
		})
	}
}

func TestCorrectedNowTracksLocalClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	s := New(clock)
	s.Initialize(At(testStart.UnixMilli()-2000), Stamp{})

	first := s.CorrectedNowMS()
	clock.Advance(1500 * time.Millisecond)
	if got := s.CorrectedNowMS() - first; got != 1500 {
		t.Fatalf("corrected now advanced by %dms want 1500", got)
	}
}

func TestApplySyncReplacesOffset(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	s := New(clock)
	local := testStart.UnixMilli()
	s.Initialize(At(local+5000), At(local))

	clock.Advance(3 * time.Second)
	local2 := clock.Now().UnixMilli()
	if stale := s.ApplySync(At(local2+5000), At(local)); stale {
		t.Fatalf("unchanged last update must not be stale")
	}
	if got := s.Offset(); got != 5*time.Second {
		t.Fatalf("offset: got %v want 5s", got)
	}

	clock.Advance(time.Second)
	local3 := clock.Now().UnixMilli()
	s.ApplySync(At(local3-700), Stamp{})
	if got := s.Offset(); got != -700*time.Millisecond {
		t.Fatalf("offset after drift: got %v want -700ms", got)
	}
}

func TestApplySyncStaleness(t *testing.T) {
	local := testStart.UnixMilli()
	cases := []struct {
		name       string
		serverNow  Stamp
		lastUpdate Stamp
		wantStale  bool
	}{
		{name: "older", serverNow: At(local), lastUpdate: At(999), wantStale: false},
		{name: "equal", serverNow: At(local), lastUpdate: At(1000), wantStale: false},
		{name: "newer", serverNow: At(local), lastUpdate: At(1001), wantStale: true},
		{name: "newer without server time", lastUpdate: At(5000), wantStale: true},
		{name: "newer with wild server time", serverNow: At(-1), lastUpdate: At(1001), wantStale: true},
		{name: "absent", serverNow: At(local), wantStale: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(clockwork.NewFakeClockAt(testStart))
			s.Initialize(At(local), At(1000))
			if got := s.ApplySync(tc.serverNow, tc.lastUpdate); got != tc.wantStale {
				t.Fatalf("stale: got %v want %v", got, tc.wantStale)
			}
			if got := s.LatestUpdate(); got != At(1000) {
				t.Fatalf("latest update must not move: got %+v", got)
			}
		})
	}
}

func TestApplySyncAdoptsMarkerWhenUnset(t *testing.T) {
	s := New(clockwork.NewFakeClockAt(testStart))
	s.Initialize(Stamp{}, Stamp{})

	if s.ApplySync(Stamp{}, At(7000)) {
		t.Fatalf("first marker must not be stale")
	}
	if got := s.LatestUpdate(); got != At(7000) {
		t.Fatalf("latest: got %+v", got)
	}
	if !s.ApplySync(Stamp{}, At(7001)) {
		t.Fatalf("expected stale once a marker is known")
	}
}

func TestApplySyncAbsentFieldsKeepPriorValues(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	s := New(clock)
	local := testStart.UnixMilli()
	s.Initialize(At(local+1234), At(local))

	s.ApplySync(Stamp{}, Stamp{})
	if got := s.Offset(); got != 1234*time.Millisecond {
		t.Fatalf("offset changed: %v", got)
	}
	if got := s.LatestUpdate(); got != At(local) {
		t.Fatalf("latest changed: %+v", got)
	}
}

func TestFromFloat(t *testing.T) {
	if got := FromFloat(1500.4); got != At(1500) {
		t.Fatalf("FromFloat(1500.4): %+v", got)
	}
	if got := FromFloat(math.NaN()); got.Valid {
		t.Fatalf("NaN must be absent")
	}
	if got := FromFloat(math.Inf(1)); got.Valid {
		t.Fatalf("Inf must be absent")
	}
	if got := FromFloat(1e300); got.Valid {
		t.Fatalf("out of range must be absent")
	}
}
