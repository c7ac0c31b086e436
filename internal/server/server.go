// Package server serves the dashboard page and the endpoints watchers poll.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/izzyreal/washboard/internal/config"
	"github.com/izzyreal/washboard/internal/store"
)

// Server answers dashboard requests from a Store.
type Server struct {
	store *store.Store
	clock clockwork.Clock
	grace time.Duration
}

// New returns a Server reading st. A nil clock means the real one.
func New(st *store.Store, clock clockwork.Clock, grace time.Duration) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Server{store: st, clock: clock, grace: grace}
}

func Run(ctx context.Context, cfg config.Server) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	created, err := st.EnsureMachines(cfg.Machines, time.Now())
	if err != nil {
		return err
	}
	if created > 0 {
		slog.Info("machines created", "count", created)
	}

	s := New(st, nil, cfg.Grace)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopMDNS := func() {}
	if cfg.MDNSEnabled {
		stopMDNS = startMDNSAdvertiser(cfg.Addr, cfg.MDNSInstance)
	}
	defer stopMDNS()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("washboard server started", "addr", cfg.Addr, "db", cfg.DBPath, "grace", cfg.Grace)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		slog.Info("washboard server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		slog.Info("washboard server stopped")
		return nil
	}
}
