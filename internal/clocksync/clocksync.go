// Package clocksync keeps a client's view of time aligned with a server.
//
// A Sync holds two values: the offset between the local clock and the
// server clock, and the most recent "state changed at" marker the server
// has reported. Every component that compares against deadlines reads time
// through CorrectedNow so that a skewed client clock does not flip lifecycle
// states early or late.
package clocksync

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Sync struct {
	clock clockwork.Clock

	mu           sync.RWMutex
	offsetMS     int64
	synced       bool
	latestUpdate Stamp
}

// New returns a Sync with zero offset and no last-update marker.
func New(clock clockwork.Clock) *Sync {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sync{clock: clock}
}

// Initialize seeds the sync from values embedded in a freshly loaded page.
// An absent serverNow leaves the offset at zero and the sync unsynchronized.
// The last-update marker falls back to serverNow when absent.
func (s *Sync) Initialize(serverNow, lastUpdate Stamp) {
	local := s.clock.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsetMS = 0
	s.synced = false
	if serverNow.Valid {
		s.offsetMS = serverNow.MS - local
		s.synced = true
	}
	s.latestUpdate = lastUpdate.Or(serverNow)
}

// ApplySync folds in a poll result and reports whether the server has state
// newer than the one this client rendered. A present serverNow replaces the
// offset outright. A present lastUpdate strictly newer than the known marker
// is a staleness signal and leaves the marker untouched; the caller is
// expected to reload. Absent fields keep the prior values.
func (s *Sync) ApplySync(serverNow, lastUpdate Stamp) (stale bool) {
	local := s.clock.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	if serverNow.Valid {
		s.offsetMS = serverNow.MS - local
		s.synced = true
	}
	if !lastUpdate.Valid {
		return false
	}
	if !s.latestUpdate.Valid {
		s.latestUpdate = lastUpdate
		return false
	}
	if lastUpdate.MS > s.latestUpdate.MS {
		return true
	}
	return false
}

// CorrectedNowMS is the local clock shifted onto the server's timeline, in
// epoch milliseconds. It is computed on every call.
func (s *Sync) CorrectedNowMS() int64 {
	s.mu.RLock()
	offset := s.offsetMS
	s.mu.RUnlock()
	return s.clock.Now().UnixMilli() + offset
}

// CorrectedNow is CorrectedNowMS as a time.Time.
func (s *Sync) CorrectedNow() time.Time {
	return time.UnixMilli(s.CorrectedNowMS())
}

func (s *Sync) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.offsetMS) * time.Millisecond
}

// Synced reports whether any server time has been observed. An
// unsynchronized Sync degrades to the raw local clock.
func (s *Sync) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

func (s *Sync) LatestUpdate() Stamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestUpdate
}
