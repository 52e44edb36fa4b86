package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"toroid/internal/convergence"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 6 || cfg.Window != 30 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ClassifierOptions() != convergence.DefaultOptions() {
		t.Fatalf("classifier defaults drifted: %+v", cfg.ClassifierOptions())
	}
}

func TestLoadFromFileKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toroid.yaml")
	data := []byte("window: 20\nclassifier:\n  policy: diff-variance\nstore:\n  backend: sqlite\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Window != 20 || cfg.Classifier.Policy != "diff-variance" || cfg.Store.Backend != "sqlite" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxSteps != 100 || cfg.Classifier.OscillationThreshold != 0.2 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("window: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("TOROID_RUNS", "42")
	t.Setenv("TOROID_BREAK_ON_CONVERGENCE", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runs != 42 || !cfg.BreakOnConvergence {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("TOROID_SEED", "not-a-number")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	kv, err := ParseOverrides([]string{"width=8", "alive_probability=0.4", "policy = diff-variance"})
	if err != nil {
		t.Fatalf("ParseOverrides: %v", err)
	}
	cfg := Default()
	if err := cfg.ApplyOverrides(kv); err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if cfg.Width != 8 || cfg.AliveProbability != 0.4 || cfg.Classifier.Policy != "diff-variance" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.ApplyOverrides(map[string]string{"colour": "red"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("unknown key: %v", err)
	}
	if _, err := ParseOverrides([]string{"novalue"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("malformed pair: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero window", func(c *Config) { c.Window = 0 }},
		{"negative budget", func(c *Config) { c.MaxSteps = -1 }},
		{"no runs", func(c *Config) { c.Runs = 0 }},
		{"probability above one", func(c *Config) { c.AliveProbability = 1.5 }},
		{"negative tolerance", func(c *Config) { c.Catalog.TorqueTolerance = -1 }},
		{"unknown policy", func(c *Config) { c.Classifier.Policy = "median" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParametersCoverOverrideKeys(t *testing.T) {
	snap := Default().Parameters()
	for _, key := range Keys() {
		if _, ok := snap.Lookup(key); !ok {
			t.Fatalf("parameter snapshot is missing %q", key)
		}
	}
	if snap.Len() != len(Keys()) {
		t.Fatalf("snapshot has %d settings, want %d", snap.Len(), len(Keys()))
	}
	if p, _ := snap.Lookup("seed"); p.Value != "1337" {
		t.Fatalf("seed = %q, want 1337", p.Value)
	}
}
