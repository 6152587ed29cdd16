// Package redisq provides a Redis-queued execution backend and its worker.
//
// The backend side serializes a batch of circuits onto a namespaced Redis
// list and blocks on a per-batch result list; a Worker pops batches,
// executes them on a delegate backend, and pushes results back. Submission
// is thereby decoupled from execution, so the expensive executor can live on
// another machine and scale independently of submitters.
package redisq

import "fmt"

// Redis key pattern helpers
//
// All keys and channels are namespaced by instance name so multiple
// deployments can share one Redis server.
//
// Key pattern: qest:{instance}:{entity}[:{id}]
// Channel pattern: qest:{instance}:{event_type}_events

// QueueKey returns the list submitters push execution batches onto and
// workers pop from.
// Pattern: qest:{instance}:batch_queue
func QueueKey(instance string) string {
	return fmt.Sprintf("qest:%s:batch_queue", instance)
}

// ResultKey returns the per-batch list a worker pushes the finished result
// onto. The submitter blocks on this key.
// Pattern: qest:{instance}:result:{batch_id}
func ResultKey(instance, batchID string) string {
	return fmt.Sprintf("qest:%s:result:%s", instance, batchID)
}

// BatchEventsChannel returns the Pub/Sub channel carrying batch lifecycle
// events (submitted, completed, failed).
// Pattern: qest:{instance}:batch_events
func BatchEventsChannel(instance string) string {
	return fmt.Sprintf("qest:%s:batch_events", instance)
}
