package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/qest/pkg/backend"
)

const (
	// popInterval bounds each blocking pop so shutdown is noticed promptly.
	popInterval = 1 * time.Second

	// resultTTL expires results no submitter collects.
	resultTTL = 10 * time.Minute
)

// Worker consumes execution batches from the queue and runs them on a
// delegate backend. Up to concurrency batches execute at once; each batch
// reports back through its own result key, so completion order does not
// matter.
type Worker struct {
	rdb         *redis.Client
	instance    string
	delegate    backend.Backend
	concurrency int
}

// NewWorker creates a Worker for the given instance.
func NewWorker(redisOpts *redis.Options, instance string, delegate backend.Backend, concurrency int) (*Worker, error) {
	if instance == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	if delegate == nil {
		return nil, fmt.Errorf("delegate backend is required")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		rdb:         redis.NewClient(redisOpts),
		instance:    instance,
		delegate:    delegate,
		concurrency: concurrency,
	}, nil
}

// Close releases the Redis connection.
func (w *Worker) Close() error {
	return w.rdb.Close()
}

// Ping verifies Redis connectivity.
func (w *Worker) Ping(ctx context.Context) error {
	if err := w.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Run blocks popping batches off the queue until ctx is cancelled, then
// waits for in-flight batches to finish. A clean shutdown returns nil.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[Worker] Starting for instance '%s' (delegate: %s, concurrency: %d)", w.instance, w.delegate.Name(), w.concurrency)

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	queue := QueueKey(w.instance)

	for ctx.Err() == nil {
		popped, err := w.rdb.BRPop(ctx, popInterval, queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // idle poll, re-check ctx
			}
			if ctx.Err() != nil {
				break
			}
			log.Printf("[Worker] Failed to pop batch: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}
		payload := popped[1]
		g.Go(func() error {
			w.process(ctx, []byte(payload))
			return nil
		})
	}

	// process reports failures through the result key, never through the group
	_ = g.Wait()
	log.Printf("[Worker] Shutting down")
	return nil
}

// process executes one batch and pushes its result. Failures are delivered
// to the submitter rather than returned: a batch that cannot execute still
// needs to unblock whoever is waiting on it.
func (w *Worker) process(ctx context.Context, payload []byte) {
	b, err := decodeBatch(payload)
	if err != nil {
		log.Printf("[Worker] Discarding undecodable batch: %v", err)
		return
	}
	w.logEvent("batch_received", map[string]interface{}{
		"batch_id": b.ID,
		"circuits": len(b.Circuits),
		"shots":    b.Shots,
	})

	start := time.Now()
	counts, runErr := backend.RunChunked(ctx, w.delegate, b.Circuits, backend.RunOptions{
		Shots:   b.Shots,
		Seed:    b.Seed,
		HasSeed: b.HasSeed,
	})

	res := &result{ID: b.ID, Worker: w.delegate.Name()}
	ev := event{Type: EventBatchCompleted, BatchID: b.ID, Circuits: len(b.Circuits), Shots: b.Shots}
	if runErr != nil {
		res.Error = runErr.Error()
		ev.Type = EventBatchFailed
		ev.Error = runErr.Error()
		w.logEvent("batch_failed", map[string]interface{}{
			"batch_id": b.ID,
			"error":    runErr.Error(),
		})
	} else {
		res.Counts = counts
		w.logEvent("batch_executed", map[string]interface{}{
			"batch_id":    b.ID,
			"circuits":    len(b.Circuits),
			"shots":       b.Shots,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	data, err := encodeResult(res)
	if err != nil {
		log.Printf("[Worker] Failed to encode result for batch %s: %v", b.ID, err)
		return
	}

	// deliver the result even when shutdown interrupted the batch
	pushCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		pushCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	key := ResultKey(w.instance, b.ID)
	if err := w.rdb.LPush(pushCtx, key, data).Err(); err != nil {
		log.Printf("[Worker] Failed to push result for batch %s: %v", b.ID, err)
		return
	}
	w.rdb.Expire(pushCtx, key, resultTTL)
	publishEvent(pushCtx, w.rdb, w.instance, ev)
}

// logEvent logs a structured event in JSON format.
func (w *Worker) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "worker"
	data["event_type"] = eventType
	data["instance"] = w.instance

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Worker] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
