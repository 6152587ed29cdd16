package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/circuit"
)

// DefaultResultTimeout bounds how long a submission waits for a worker.
const DefaultResultTimeout = 5 * time.Minute

// Config configures a Backend.
type Config struct {
	Instance      string        // namespace for keys and channels (required)
	MaxBatchSize  int           // advertised capacity; 0 = unlimited
	ResultTimeout time.Duration // wait bound per batch; 0 = DefaultResultTimeout
}

// Backend submits circuit batches to a Redis queue and waits for a worker
// to push results back. It implements backend.Backend and is safe for
// concurrent use; concurrent Run calls correlate through per-batch result
// keys.
type Backend struct {
	rdb           *redis.Client
	instance      string
	maxBatchSize  int
	resultTimeout time.Duration
}

// New creates a Backend connecting to Redis with the given options.
func New(redisOpts *redis.Options, cfg Config) (*Backend, error) {
	if cfg.Instance == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	timeout := cfg.ResultTimeout
	if timeout == 0 {
		timeout = DefaultResultTimeout
	}
	return &Backend{
		rdb:           redis.NewClient(redisOpts),
		instance:      cfg.Instance,
		maxBatchSize:  cfg.MaxBatchSize,
		resultTimeout: timeout,
	}, nil
}

// Close releases the Redis connection.
func (b *Backend) Close() error {
	return b.rdb.Close()
}

// Ping verifies Redis connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return "redisq:" + b.instance
}

// MaxBatchSize implements backend.Backend.
func (b *Backend) MaxBatchSize() int {
	return b.maxBatchSize
}

// Run enqueues the circuits as one batch and blocks until a worker delivers
// the histograms, the context is cancelled, or the result timeout passes. A
// timed-out batch may still execute; its result expires unread.
func (b *Backend) Run(ctx context.Context, circuits []*circuit.Circuit, opts backend.RunOptions) ([]backend.Counts, error) {
	if len(circuits) == 0 {
		return nil, fmt.Errorf("no circuits to run")
	}
	if b.maxBatchSize > 0 && len(circuits) > b.maxBatchSize {
		return nil, fmt.Errorf("batch of %d circuits exceeds the limit of %d", len(circuits), b.maxBatchSize)
	}

	id := uuid.New().String()
	payload, err := encodeBatch(&batch{
		ID:       id,
		Circuits: circuits,
		Shots:    opts.Shots,
		Seed:     opts.Seed,
		HasSeed:  opts.HasSeed,
	})
	if err != nil {
		return nil, err
	}

	if err := b.rdb.LPush(ctx, QueueKey(b.instance), payload).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue batch %s: %w", id, err)
	}
	publishEvent(ctx, b.rdb, b.instance, event{
		Type:     EventBatchSubmitted,
		BatchID:  id,
		Circuits: len(circuits),
		Shots:    opts.Shots,
	})

	popped, err := b.rdb.BRPop(ctx, b.resultTimeout, ResultKey(b.instance, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("timed out after %v waiting for batch %s; is a worker running for instance '%s'?", b.resultTimeout, id, b.instance)
		}
		return nil, fmt.Errorf("failed to wait for batch %s: %w", id, err)
	}

	res, err := decodeResult([]byte(popped[1]))
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}
	if res.Error != "" {
		return nil, fmt.Errorf("worker failed to execute batch %s: %s", id, res.Error)
	}
	if len(res.Counts) != len(circuits) {
		return nil, fmt.Errorf("batch %s returned %d histograms for %d circuits", id, len(res.Counts), len(circuits))
	}
	return res.Counts, nil
}

// publishEvent fires a lifecycle event. Publish failures are swallowed: the
// event stream is advisory and must not fail the batch.
func publishEvent(ctx context.Context, rdb *redis.Client, instance string, ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	rdb.Publish(ctx, BatchEventsChannel(instance), data)
}
