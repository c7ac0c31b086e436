package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/izzyreal/washboard/internal/testutil"
)

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
version: 1
machines:
  - name: Washer 1
  - name: Dryer
    max_concurrent: 2
watch:
  render_interval: 500ms
  poll_interval: 5s
`), "test-valid")
	if err != nil {
		t.Fatalf("parse valid config: %v", err)
	}
	if len(cfg.Machines) != 2 || cfg.Machines[1].Name != "Dryer" || cfg.Machines[1].MaxConcurrent != 2 {
		t.Fatalf("unexpected machines: %+v", cfg.Machines)
	}
	if cfg.Watch.RenderInterval != 500*time.Millisecond || cfg.Watch.PollInterval != 5*time.Second {
		t.Fatalf("unexpected timings: %+v", cfg.Watch)
	}
	merged := cfg.Watch.Merge(DefaultTimings())
	if merged.PollDelay != 1500*time.Millisecond {
		t.Fatalf("poll delay should fall back to default, got %v", merged.PollDelay)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(`
version: 2
`), "test-version")
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Fatalf("expected unsupported version error, got: %v", err)
	}
}

func TestParseRejectsBadMachines(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
machines:
  - name: ""
  - name: Washer
  - name: Washer
    max_concurrent: -1
`), "test-machines")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"machines[0].name is required", `machines[2].name duplicate "Washer"`, "machines[2].max_concurrent"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
machnes: []
`), "test-unknown")
	if err == nil || !strings.Contains(err.Error(), "parse YAML") {
		t.Fatalf("expected unknown field error, got: %v", err)
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("version: ["), "test-yaml")
	if err == nil || !strings.Contains(err.Error(), "parse YAML") {
		t.Fatalf("expected parse YAML error, got: %v", err)
	}
}

func TestServerFromEnv(t *testing.T) {
	testutil.ClearEnv(t, "WASHBOARD_")
	path := filepath.Join(t.TempDir(), "washboard.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nmachines:\n  - name: Washer 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WASHBOARD_CONFIG", path)
	t.Setenv("WASHBOARD_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("WASHBOARD_GRACE", "10m")
	t.Setenv("WASHBOARD_MDNS_ENABLE", "false")
	t.Setenv("WASHBOARD_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := ServerFromEnv()
	if err != nil {
		t.Fatalf("ServerFromEnv: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.Grace != 10*time.Minute || cfg.MDNSEnabled {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSOrigins)
	}
	if len(cfg.Machines) != 1 || cfg.Machines[0].Name != "Washer 1" {
		t.Fatalf("unexpected machines: %+v", cfg.Machines)
	}
}

func TestServerFromEnvDefaults(t *testing.T) {
	testutil.ClearEnv(t, "WASHBOARD_")
	cfg, err := ServerFromEnv()
	if err != nil {
		t.Fatalf("ServerFromEnv: %v", err)
	}
	if cfg.Addr != DefaultServerAddr || cfg.DBPath != "washboard.db" || cfg.Grace != DefaultGrace || !cfg.MDNSEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSOrigins)
	}
}

func TestWatcherFromEnvLayering(t *testing.T) {
	testutil.ClearEnv(t, "WASHBOARD_")
	path := filepath.Join(t.TempDir(), "washboard.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nwatch:\n  poll_delay: 2s\n  poll_interval: 10s\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WASHBOARD_CONFIG", path)
	t.Setenv("WASHBOARD_SERVER_URL", "http://laundry.local:8112/")
	t.Setenv("WASHBOARD_POLL_INTERVAL", "4s")

	cfg, err := WatcherFromEnv()
	if err != nil {
		t.Fatalf("WatcherFromEnv: %v", err)
	}
	if cfg.ServerURL != "http://laundry.local:8112" {
		t.Fatalf("server url %q", cfg.ServerURL)
	}
	want := Timings{RenderInterval: time.Second, PollDelay: 2 * time.Second, PollInterval: 4 * time.Second}
	if cfg.Timings != want {
		t.Fatalf("timings %+v want %+v", cfg.Timings, want)
	}
}

func TestWatcherFromEnvRejectsBadDuration(t *testing.T) {
	testutil.ClearEnv(t, "WASHBOARD_")
	t.Setenv("WASHBOARD_POLL_INTERVAL", "soon")
	if _, err := WatcherFromEnv(); err == nil || !strings.Contains(err.Error(), "WASHBOARD_POLL_INTERVAL") {
		t.Fatalf("expected duration error, got %v", err)
	}
	t.Setenv("WASHBOARD_POLL_INTERVAL", "-1s")
	if _, err := WatcherFromEnv(); err == nil || !strings.Contains(err.Error(), "must be positive") {
		t.Fatalf("expected positive duration error, got %v", err)
	}
}
