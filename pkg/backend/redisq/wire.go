package redisq

import (
	"encoding/json"
	"fmt"

	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/circuit"
)

// batch is the wire form of one execution submission.
type batch struct {
	ID       string             `json:"id"`       // correlation id, also names the result key
	Circuits []*circuit.Circuit `json:"circuits"` // fully bound circuits with measurements
	Shots    int                `json:"shots"`
	Seed     int64              `json:"seed,omitempty"`
	HasSeed  bool               `json:"has_seed,omitempty"`
}

// result is the wire form of one finished batch. Exactly one of Counts and
// Error is meaningful.
type result struct {
	ID     string           `json:"id"`
	Worker string           `json:"worker,omitempty"` // delegate backend that executed the batch
	Counts []backend.Counts `json:"counts,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// event is published on the batch events channel at submission and
// completion. Events are advisory; nothing in the execution path depends on
// a subscriber seeing them.
type event struct {
	Type     string `json:"type"` // "submitted", "completed", "failed"
	BatchID  string `json:"batch_id"`
	Circuits int    `json:"circuits"`
	Shots    int    `json:"shots,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Event types published on the batch events channel.
const (
	EventBatchSubmitted = "submitted"
	EventBatchCompleted = "completed"
	EventBatchFailed    = "failed"
)

func encodeBatch(b *batch) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch %s: %w", b.ID, err)
	}
	return data, nil
}

func decodeBatch(data []byte) (*batch, error) {
	var b batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch: %w", err)
	}
	if b.ID == "" {
		return nil, fmt.Errorf("batch has no id")
	}
	return &b, nil
}

func encodeResult(r *result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result for batch %s: %w", r.ID, err)
	}
	return data, nil
}

func decodeResult(data []byte) (*result, error) {
	var r result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &r, nil
}
