package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration shared by the server and the
// watcher. The server reads machines; the watcher reads watch timings.
type File struct {
	Version  int       `yaml:"version" json:"version"`
	Machines []Machine `yaml:"machines,omitempty" json:"machines,omitempty"`
	Watch    Timings   `yaml:"watch,omitempty" json:"watch,omitempty"`
}

type Machine struct {
	Name          string `yaml:"name" json:"name"`
	MaxConcurrent int    `yaml:"max_concurrent,omitempty" json:"max_concurrent,omitempty"`
}

// Timings controls the watcher's cadences. Zero fields keep their defaults.
type Timings struct {
	RenderInterval time.Duration `yaml:"render_interval,omitempty" json:"render_interval,omitempty"`
	PollDelay      time.Duration `yaml:"poll_delay,omitempty" json:"poll_delay,omitempty"`
	PollInterval   time.Duration `yaml:"poll_interval,omitempty" json:"poll_interval,omitempty"`
}

func DefaultTimings() Timings {
	return Timings{
		RenderInterval: time.Second,
		PollDelay:      1500 * time.Millisecond,
		PollInterval:   3 * time.Second,
	}
}

// Merge returns t with its zero fields taken from fallback.
func (t Timings) Merge(fallback Timings) Timings {
	if t.RenderInterval <= 0 {
		t.RenderInterval = fallback.RenderInterval
	}
	if t.PollDelay <= 0 {
		t.PollDelay = fallback.PollDelay
	}
	if t.PollInterval <= 0 {
		t.PollInterval = fallback.PollInterval
	}
	return t
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, source string) (File, error) {
	var cfg File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (cfg File) Validate() []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}

	names := map[string]struct{}{}
	for i, m := range cfg.Machines {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("machines[%d].name is required", i))
		} else {
			if _, exists := names[name]; exists {
				errs = append(errs, fmt.Sprintf("machines[%d].name duplicate %q", i, name))
			}
			names[name] = struct{}{}
		}
		if m.MaxConcurrent < 0 {
			errs = append(errs, fmt.Sprintf("machines[%d].max_concurrent must be >= 1", i))
		}
	}

	if cfg.Watch.RenderInterval < 0 {
		errs = append(errs, "watch.render_interval must not be negative")
	}
	if cfg.Watch.PollDelay < 0 {
		errs = append(errs, "watch.poll_delay must not be negative")
	}
	if cfg.Watch.PollInterval < 0 {
		errs = append(errs, "watch.poll_interval must not be negative")
	}

	return errs
}
