// Package config loads survey settings from defaults, an optional YAML file,
// TOROID_* environment variables and key=value overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"toroid/internal/attractor"
	"toroid/internal/convergence"
	"toroid/internal/engine"
)

// ErrInvalidConfig reports a setting outside its valid range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable of a survey.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Window is the convergence memory: trailing population samples examined.
	Window   int `yaml:"window"`
	MaxSteps int `yaml:"max_steps"`

	BreakOnConvergence bool `yaml:"break_on_convergence"`

	// AliveProbability seeds random lattices; negative draws one per run.
	AliveProbability float64 `yaml:"alive_probability"`
	Seed             int64   `yaml:"seed"`

	Runs    int `yaml:"runs"`
	Workers int `yaml:"workers"`

	Classifier ClassifierConfig `yaml:"classifier"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Logging    LoggingConfig    `yaml:"logging"`
	Store      StoreConfig      `yaml:"store"`
}

// ClassifierConfig holds the empirical convergence thresholds.
type ClassifierConfig struct {
	// Policy is "raw-variance" or "diff-variance".
	Policy               string  `yaml:"policy"`
	ConstantTolerance    float64 `yaml:"constant_tolerance"`
	OscillationThreshold float64 `yaml:"oscillation_threshold"`
	// BatchTolerance bounds the window variance of a constant batch run.
	BatchTolerance float64 `yaml:"batch_tolerance"`
}

// CatalogConfig configures attractor deduplication.
type CatalogConfig struct {
	TorqueTolerance float64 `yaml:"torque_tolerance"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace".
	Level string `yaml:"level"`
}

// StoreConfig selects where surveys are persisted.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Default returns the standard configuration.
func Default() *Config {
	cls := convergence.DefaultOptions()
	return &Config{
		Width:            6,
		Height:           6,
		Window:           30,
		MaxSteps:         100,
		AliveProbability: -1,
		Seed:             1337,
		Runs:             1000,
		Workers:          runtime.NumCPU(),
		Classifier: ClassifierConfig{
			Policy:               string(cls.Policy),
			ConstantTolerance:    cls.ConstantTolerance,
			OscillationThreshold: cls.OscillationThreshold,
			BatchTolerance:       engine.DefaultBatchOptions().Tolerance,
		},
		Catalog: CatalogConfig{TorqueTolerance: attractor.DefaultTolerance},
		Logging: LoggingConfig{Level: "info"},
		Store:   StoreConfig{Backend: "memory", Path: "toroid.db"},
	}
}

// Load applies an optional YAML file and the environment on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file; unset keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a survey.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, c.Window)
	case c.MaxSteps <= 0:
		return fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	case c.Runs <= 0:
		return fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidConfig, c.Runs)
	case c.AliveProbability > 1:
		return fmt.Errorf("%w: alive_probability must be at most 1, got %g", ErrInvalidConfig, c.AliveProbability)
	case c.Classifier.ConstantTolerance < 0 || c.Classifier.OscillationThreshold < 0 || c.Classifier.BatchTolerance < 0:
		return fmt.Errorf("%w: classifier thresholds must be non-negative", ErrInvalidConfig)
	case c.Catalog.TorqueTolerance < 0:
		return fmt.Errorf("%w: torque_tolerance must be non-negative, got %g", ErrInvalidConfig, c.Catalog.TorqueTolerance)
	}

	switch convergence.Policy(c.Classifier.Policy) {
	case convergence.PolicyRawVariance, convergence.PolicyDiffVariance:
	default:
		return fmt.Errorf("%w: unknown classifier policy %q", ErrInvalidConfig, c.Classifier.Policy)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: invalid log level %q (valid: info, debug, trace)", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Store.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("%w: unsupported store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// ClassifierOptions converts the classifier settings.
func (c *Config) ClassifierOptions() convergence.Options {
	opts := convergence.DefaultOptions()
	opts.Policy = convergence.Policy(c.Classifier.Policy)
	opts.ConstantTolerance = c.Classifier.ConstantTolerance
	opts.OscillationThreshold = c.Classifier.OscillationThreshold
	return opts
}

// SingleOptions converts the settings for a single-run engine.
func (c *Config) SingleOptions() engine.SingleOptions {
	return engine.SingleOptions{
		Window:             c.Window,
		BreakOnConvergence: c.BreakOnConvergence,
		Classifier:         c.ClassifierOptions(),
	}
}

// BatchOptions converts the settings for a batch engine.
func (c *Config) BatchOptions() engine.BatchOptions {
	return engine.BatchOptions{
		Window:    c.Window,
		Workers:   c.Workers,
		Tolerance: c.Classifier.BatchTolerance,
	}
}

// applyEnvOverrides applies TOROID_* variables.
func applyEnvOverrides(c *Config) error {
	overrides := map[string]string{}
	for _, key := range keys {
		env := "TOROID_" + strings.ToUpper(key)
		if v, ok := os.LookupEnv(env); ok && v != "" {
			overrides[key] = v
		}
	}
	if err := c.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// keys lists every override key accepted by ApplyOverrides.
var keys = []string{
	"width", "height", "window", "max_steps", "break_on_convergence",
	"alive_probability", "seed", "runs", "workers",
	"policy", "constant_tolerance", "oscillation_threshold", "batch_tolerance",
	"torque_tolerance", "log_level", "store_backend", "store_path",
}

// Keys returns the accepted override keys.
func Keys() []string { return append([]string(nil), keys...) }

// ApplyOverrides sets fields from flag-style key/value pairs.
func (c *Config) ApplyOverrides(kv map[string]string) error {
	for key, v := range kv {
		var err error
		switch key {
		case "width":
			c.Width, err = strconv.Atoi(v)
		case "height":
			c.Height, err = strconv.Atoi(v)
		case "window":
			c.Window, err = strconv.Atoi(v)
		case "max_steps":
			c.MaxSteps, err = strconv.Atoi(v)
		case "break_on_convergence":
			c.BreakOnConvergence, err = strconv.ParseBool(v)
		case "alive_probability":
			c.AliveProbability, err = strconv.ParseFloat(v, 64)
		case "seed":
			c.Seed, err = strconv.ParseInt(v, 10, 64)
		case "runs":
			c.Runs, err = strconv.Atoi(v)
		case "workers":
			c.Workers, err = strconv.Atoi(v)
		case "policy":
			c.Classifier.Policy = v
		case "constant_tolerance":
			c.Classifier.ConstantTolerance, err = strconv.ParseFloat(v, 64)
		case "oscillation_threshold":
			c.Classifier.OscillationThreshold, err = strconv.ParseFloat(v, 64)
		case "batch_tolerance":
			c.Classifier.BatchTolerance, err = strconv.ParseFloat(v, 64)
		case "torque_tolerance":
			c.Catalog.TorqueTolerance, err = strconv.ParseFloat(v, 64)
		case "log_level":
			c.Logging.Level = v
		case "store_backend":
			c.Store.Backend = v
		case "store_path":
			c.Store.Path = v
		default:
			return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
		}
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
		}
	}
	return nil
}

// ParseOverrides splits key=value strings.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("%w: override %q is not key=value", ErrInvalidConfig, kv)
		}
		out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return out, nil
}
