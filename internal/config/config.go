package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level qest.yml configuration
type Config struct {
	Version   string           `yaml:"version"`
	Backend   BackendConfig    `yaml:"backend"`
	Estimator *EstimatorConfig `yaml:"estimator,omitempty"`
	Worker    *WorkerConfig    `yaml:"worker,omitempty"`
}

// BackendConfig selects and configures the execution backend
type BackendConfig struct {
	Kind  string       `yaml:"kind"` // Required: "sim" or "redis"
	Sim   *SimConfig   `yaml:"sim,omitempty"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// SimConfig configures the in-process statevector simulator
type SimConfig struct {
	MaxBatchSize int `yaml:"max_batch_size,omitempty"` // Circuits per submission (0 = unlimited)
}

// RedisConfig configures the Redis-queued backend
type RedisConfig struct {
	Addr                 string `yaml:"addr"`                             // Required: Redis address, e.g. localhost:6379
	Instance             string `yaml:"instance,omitempty"`               // Queue namespace (default: "default")
	MaxBatchSize         int    `yaml:"max_batch_size,omitempty"`         // Circuits per submission (0 = unlimited)
	ResultTimeoutSeconds int    `yaml:"result_timeout_seconds,omitempty"` // How long to wait for a worker (0 = backend default)
}

// ResultTimeout converts the configured timeout into a duration, zero when
// unset.
func (r *RedisConfig) ResultTimeout() time.Duration {
	return time.Duration(r.ResultTimeoutSeconds) * time.Second
}

// EstimatorConfig overrides estimation defaults
type EstimatorConfig struct {
	DefaultPrecision *float64 `yaml:"default_precision,omitempty"` // Fallback target precision
	AbelianGrouping  *bool    `yaml:"abelian_grouping,omitempty"`  // Group commuting operators (default: true)
	Seed             *int64   `yaml:"seed,omitempty"`              // Fixed sampling seed for reproducible runs
}

// WorkerConfig configures the qest worker process
type WorkerConfig struct {
	Delegate    string `yaml:"delegate,omitempty"`    // Executing backend (default: "sim")
	Concurrency int    `yaml:"concurrency,omitempty"` // Batches executed in parallel (default: 1)
}

// Default returns the configuration used when no qest.yml is provided: the
// in-process simulator with estimation defaults.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{Kind: "sim"},
	}
}

// Validate performs strict validation on the configuration and applies
// defaults for omitted sections
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Estimator != nil {
		if err := c.Estimator.Validate(); err != nil {
			return err
		}
	}

	// Apply default worker config if missing
	if c.Worker == nil {
		c.Worker = &WorkerConfig{}
	}
	if err := c.Worker.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate performs validation on the backend selection
func (b *BackendConfig) Validate() error {
	switch b.Kind {
	case "sim":
		if b.Sim == nil {
			b.Sim = &SimConfig{}
		}
		if b.Sim.MaxBatchSize < 0 {
			return fmt.Errorf("backend.sim.max_batch_size must be >= 0 (0 = unlimited), got %d", b.Sim.MaxBatchSize)
		}
	case "redis":
		if b.Redis == nil {
			return fmt.Errorf("backend.kind is 'redis' but no redis configuration provided")
		}
		if err := b.Redis.Validate(); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("backend.kind is required (must be 'sim' or 'redis')")
	default:
		return fmt.Errorf("invalid backend.kind: %s (must be 'sim' or 'redis')", b.Kind)
	}
	return nil
}

// Validate performs validation on the Redis backend configuration and
// applies defaults
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return fmt.Errorf("backend.redis.addr is required")
	}

	// Apply default instance name if not specified
	if r.Instance == "" {
		r.Instance = "default"
	}

	if r.MaxBatchSize < 0 {
		return fmt.Errorf("backend.redis.max_batch_size must be >= 0 (0 = unlimited), got %d", r.MaxBatchSize)
	}
	if r.ResultTimeoutSeconds < 0 {
		return fmt.Errorf("backend.redis.result_timeout_seconds must be >= 0, got %d", r.ResultTimeoutSeconds)
	}
	return nil
}

// Validate performs validation on the estimator overrides
func (e *EstimatorConfig) Validate() error {
	if e.DefaultPrecision != nil && *e.DefaultPrecision <= 0 {
		return fmt.Errorf("estimator.default_precision must be > 0, got %g", *e.DefaultPrecision)
	}
	return nil
}

// Validate performs validation on the worker configuration and applies
// defaults
func (w *WorkerConfig) Validate() error {
	// Apply default delegate if not specified
	if w.Delegate == "" {
		w.Delegate = "sim"
	}
	if w.Delegate != "sim" {
		return fmt.Errorf("invalid worker.delegate: %s (must be 'sim')", w.Delegate)
	}

	// Set default concurrency if not specified
	if w.Concurrency == 0 {
		w.Concurrency = 1
	}
	if w.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be >= 1, got %d", w.Concurrency)
	}
	return nil
}

// Load reads and validates qest.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
