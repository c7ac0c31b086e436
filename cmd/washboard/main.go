package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/izzyreal/washboard/internal/config"
	"github.com/izzyreal/washboard/internal/server"
	"github.com/izzyreal/washboard/internal/watcher"
)

const discoverTimeout = 3 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "washboard: load .env: %v\n", err)
	}
	initLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(ctx)
	case "watch":
		err = runWatch(ctx)
	case "all-in-one":
		err = runAllInOne(ctx)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "washboard: %v\n", err)
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(os.Getenv("WASHBOARD_LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runServer(ctx context.Context) error {
	cfg, err := config.ServerFromEnv()
	if err != nil {
		return err
	}
	return server.Run(ctx, cfg)
}

func runWatch(ctx context.Context) error {
	cfg, err := config.WatcherFromEnv()
	if err != nil {
		return err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL, err = watcher.Discover(ctx, discoverTimeout)
		if err != nil {
			slog.Info("server discovery failed, using default", "error", err, "server", config.DefaultServerURL)
			cfg.ServerURL = config.DefaultServerURL
		}
	}
	return watch(ctx, cfg)
}

func watch(ctx context.Context, cfg config.Watcher) error {
	return watcher.New(watcher.Options{
		ServerURL: cfg.ServerURL,
		Timings:   cfg.Timings,
		Visible:   watcher.VisibilitySignals(ctx),
	}).Run(ctx)
}

// runAllInOne serves the dashboard and watches it from the same process.
func runAllInOne(ctx context.Context) error {
	srvCfg, err := config.ServerFromEnv()
	if err != nil {
		return err
	}
	watchCfg, err := config.WatcherFromEnv()
	if err != nil {
		return err
	}
	watchCfg.ServerURL = localURL(srvCfg.Addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Run(ctx, srvCfg)
	}()
	go func() {
		errCh <- watch(ctx, watchCfg)
	}()

	err = <-errCh
	cancel()
	if other := <-errCh; err == nil {
		err = other
	}
	return err
}

// localURL is the loopback URL for a server listening on addr.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil || port == "" {
		return config.DefaultServerURL
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func usage() {
	fmt.Fprintf(os.Stderr, `washboard - shared machine queue dashboard

Usage:
  washboard <command>

Commands:
  server      Serve the dashboard page and /sync-state
  watch       Follow a dashboard from the terminal
  all-in-one  Run server and watcher in one process
  help        Show this help

Environment:
  WASHBOARD_SERVER_ADDR, WASHBOARD_DB, WASHBOARD_GRACE, WASHBOARD_CONFIG,
  WASHBOARD_SERVER_URL, WASHBOARD_POLL_INTERVAL, WASHBOARD_LOG_LEVEL
  (a .env file in the working directory is read first)
`)
}
