package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/qest/internal/config"
	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/backend/redisq"
	"github.com/dyluth/qest/pkg/backend/sim"
	"github.com/dyluth/qest/pkg/estimator"
)

// loadConfig loads qest.yml from path, or the built-in default
// configuration (in-process simulator) when no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(path)
}

// buildBackend constructs the execution backend the configuration selects.
// The returned cleanup function releases any connections it opened.
func buildBackend(ctx context.Context, cfg *config.Config) (backend.Backend, func(), error) {
	switch cfg.Backend.Kind {
	case "sim":
		return sim.New(sim.Options{MaxBatchSize: cfg.Backend.Sim.MaxBatchSize}), func() {}, nil

	case "redis":
		rc := cfg.Backend.Redis
		b, err := redisq.New(&redis.Options{Addr: rc.Addr}, redisq.Config{
			Instance:      rc.Instance,
			MaxBatchSize:  rc.MaxBatchSize,
			ResultTimeout: rc.ResultTimeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		if err := b.Ping(ctx); err != nil {
			b.Close()
			return nil, nil, fmt.Errorf("Redis not accessible at %s: %w", rc.Addr, err)
		}
		return b, func() { b.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("invalid backend.kind: %s", cfg.Backend.Kind)
	}
}

// estimatorOptions maps the configuration's estimator overrides onto
// estimator options.
func estimatorOptions(cfg *config.Config) estimator.Options {
	opts := estimator.Options{}
	if cfg.Estimator == nil {
		return opts
	}
	if cfg.Estimator.DefaultPrecision != nil {
		opts.DefaultPrecision = *cfg.Estimator.DefaultPrecision
	}
	opts.AbelianGrouping = cfg.Estimator.AbelianGrouping
	opts.Seed = cfg.Estimator.Seed
	return opts
}
