// Package watcher follows a dashboard server from a terminal.
//
// A watch session loads the dashboard page, seeds a clock sync from the
// metadata embedded in it, then renders the page's timers on the render
// interval while a poller checks /sync-state. When the poller reports that
// the server has newer state, the session ends and the page is loaded again
// from scratch.
package watcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/izzyreal/washboard/internal/board"
	"github.com/izzyreal/washboard/internal/clocksync"
	"github.com/izzyreal/washboard/internal/config"
	"github.com/izzyreal/washboard/internal/poller"
	"github.com/izzyreal/washboard/internal/timerview"
)

type Options struct {
	ServerURL string
	Timings   config.Timings
	// Out receives a frame after every render. Defaults to os.Stdout. The
	// screen is cleared between frames only when Out is a terminal.
	Out    io.Writer
	Client *http.Client
	Clock  clockwork.Clock
	// Visible triggers an immediate poll on every value. May be nil.
	Visible <-chan struct{}
}

type Watcher struct {
	baseURL string
	timings config.Timings
	out     io.Writer
	clear   bool
	client  *http.Client
	clock   clockwork.Clock
	visible <-chan struct{}
	fetcher poller.Fetcher
}

func New(opts Options) *Watcher {
	w := &Watcher{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.ServerURL), "/"),
		timings: opts.Timings.Merge(config.DefaultTimings()),
		out:     opts.Out,
		client:  opts.Client,
		clock:   opts.Clock,
		visible: opts.Visible,
	}
	if w.baseURL == "" {
		w.baseURL = config.DefaultServerURL
	}
	if w.out == nil {
		w.out = os.Stdout
	}
	w.clear = isTerminal(w.out)
	if w.client == nil {
		w.client = &http.Client{Timeout: 10 * time.Second}
	}
	if w.clock == nil {
		w.clock = clockwork.NewRealClock()
	}
	w.fetcher = poller.NewHTTPFetcher(w.client, w.baseURL)
	return w
}

// Run watches until ctx is done. Page loads that fail are retried on the
// poll interval.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("washboard watcher started", "server", w.baseURL)
	defer slog.Info("washboard watcher stopped")

	w.checkServerVersion(ctx)

	for {
		doc, err := w.load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("load dashboard failed", "server", w.baseURL, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-w.clock.After(w.timings.PollInterval):
			}
			continue
		}

		err = w.session(ctx, doc)
		switch {
		case errors.Is(err, poller.ErrStale):
			slog.Debug("reloading dashboard")
		case err != nil:
			return err
		default:
			return nil
		}
	}
}

func (w *Watcher) load(ctx context.Context) (*board.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create dashboard request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, fmt.Errorf("dashboard rejected: status=%d body=%s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return board.Parse(resp.Body, nil)
}

// session renders doc and polls until ctx is done or the server reports
// newer state, in which case it returns poller.ErrStale.
func (w *Watcher) session(ctx context.Context, doc *board.Document) error {
	serverNow, lastUpdate, ok := doc.Meta()
	if !ok {
		slog.Warn("dashboard carries no server metadata, timers use the local clock")
	}
	sync := clocksync.New(w.clock)
	sync.Initialize(serverNow, lastUpdate)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	renderer := timerview.NewRenderer(sync, doc)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderer.Run(ctx, w.clock, w.timings.RenderInterval, func(st timerview.Stats) {
			w.draw(doc, sync, st)
		})
	}()

	p := poller.New(w.clock, w.fetcher, sync, poller.Config{
		InitialDelay: w.timings.PollDelay,
		Interval:     w.timings.PollInterval,
		Visible:      w.visible,
	})
	err := p.Run(ctx)
	cancel()
	<-rendered
	return err
}
