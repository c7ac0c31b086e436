// Package poller watches a dashboard server for state changes.
//
// Polls are best effort: a failed request is logged at debug level and
// forgotten, and the next scheduled poll tries again. A poll that reports a
// last-update marker newer than the one the client rendered ends Run with
// ErrStale so the caller can reload everything from scratch.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/izzyreal/washboard/internal/clocksync"
)

// ErrStale reports that the server has state newer than the rendered page.
var ErrStale = errors.New("server state changed since page load")

const (
	DefaultInitialDelay = 1500 * time.Millisecond
	DefaultInterval     = 3 * time.Second
)

type Config struct {
	// InitialDelay postpones the first poll so it does not race the page
	// load that seeded the sync.
	InitialDelay time.Duration
	Interval     time.Duration
	// Visible delivers one value each time the client becomes visible
	// again; every value triggers an immediate poll. May be nil.
	Visible <-chan struct{}
}

type Poller struct {
	clock   clockwork.Clock
	fetcher Fetcher
	sync    *clocksync.Sync
	cfg     Config
}

func New(clock clockwork.Clock, fetcher Fetcher, sync *clocksync.Sync, cfg Config) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{clock: clock, fetcher: fetcher, sync: sync, cfg: cfg}
}

// PollOnce fetches the sync state and applies it. It reports whether the
// server signalled staleness; transport and decode failures report false.
func (p *Poller) PollOnce(ctx context.Context, reason string) bool {
	res, err := p.fetcher.FetchSyncState(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Debug("sync-state poll failed", "reason", reason, "error", err)
		}
		return false
	}
	if !p.sync.ApplySync(res.ServerNow, res.LastUpdate) {
		return false
	}
	slog.Info("server state changed, reload required",
		"reason", reason,
		"last_update_ms", res.LastUpdate.MS,
		"known_update_ms", p.sync.LatestUpdate().MS,
	)
	return true
}

// Run polls until ctx is done, returning nil, or until a poll detects
// staleness, returning ErrStale. Each poll runs in its own goroutine so a
// slow request never delays the next scheduled one; outstanding polls are
// cancelled and waited for before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stale := make(chan struct{})
	var once sync.Once
	poll := func(reason string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.PollOnce(ctx, reason) {
				once.Do(func() { close(stale) })
			}
		}()
	}

	visible := p.cfg.Visible
	first := p.clock.NewTimer(p.cfg.InitialDelay)
	defer first.Stop()
	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stale:
			return ErrStale
		case <-first.Chan():
			poll("initial")
		case <-ticker.Chan():
			poll("interval")
		case _, ok := <-visible:
			if !ok {
				visible = nil
				continue
			}
			poll("visible")
		}
	}
}
