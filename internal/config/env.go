package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultServerAddr = ":8112"
	DefaultServerURL  = "http://127.0.0.1:8112"
	DefaultGrace      = 30 * time.Minute

	// MDNSService is the DNS-SD service type the server advertises.
	MDNSService = "_washboard._tcp"
)

type Server struct {
	Addr         string
	DBPath       string
	Grace        time.Duration
	MDNSEnabled  bool
	MDNSInstance string
	CORSOrigins  []string
	Machines     []Machine
}

type Watcher struct {
	// ServerURL is empty when the server should be discovered over mDNS.
	ServerURL string
	Timings   Timings
}

// ServerFromEnv reads WASHBOARD_* variables and, when WASHBOARD_CONFIG is
// set, the machines listed in that file.
func ServerFromEnv() (Server, error) {
	grace, err := durationFromEnv("WASHBOARD_GRACE", DefaultGrace)
	if err != nil {
		return Server{}, err
	}
	cfg := Server{
		Addr:         EnvOrDefault("WASHBOARD_SERVER_ADDR", DefaultServerAddr),
		DBPath:       EnvOrDefault("WASHBOARD_DB", "washboard.db"),
		Grace:        grace,
		MDNSEnabled:  !strings.EqualFold(strings.TrimSpace(EnvOrDefault("WASHBOARD_MDNS_ENABLE", "true")), "false"),
		MDNSInstance: strings.TrimSpace(os.Getenv("WASHBOARD_MDNS_INSTANCE")),
		CORSOrigins:  splitList(EnvOrDefault("WASHBOARD_CORS_ORIGINS", "*")),
	}
	if path := strings.TrimSpace(os.Getenv("WASHBOARD_CONFIG")); path != "" {
		file, err := Load(path)
		if err != nil {
			return Server{}, err
		}
		cfg.Machines = file.Machines
	}
	return cfg, nil
}

// WatcherFromEnv reads WASHBOARD_* variables. Timings come from the defaults,
// then WASHBOARD_CONFIG's watch section, then individual variables.
func WatcherFromEnv() (Watcher, error) {
	timings := DefaultTimings()
	if path := strings.TrimSpace(os.Getenv("WASHBOARD_CONFIG")); path != "" {
		file, err := Load(path)
		if err != nil {
			return Watcher{}, err
		}
		timings = file.Watch.Merge(timings)
	}

	var err error
	if timings.RenderInterval, err = durationFromEnv("WASHBOARD_RENDER_INTERVAL", timings.RenderInterval); err != nil {
		return Watcher{}, err
	}
	if timings.PollDelay, err = durationFromEnv("WASHBOARD_POLL_DELAY", timings.PollDelay); err != nil {
		return Watcher{}, err
	}
	if timings.PollInterval, err = durationFromEnv("WASHBOARD_POLL_INTERVAL", timings.PollInterval); err != nil {
		return Watcher{}, err
	}

	return Watcher{
		ServerURL: strings.TrimRight(strings.TrimSpace(os.Getenv("WASHBOARD_SERVER_URL")), "/"),
		Timings:   timings,
	}, nil
}

func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
