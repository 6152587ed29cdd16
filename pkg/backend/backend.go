// Package backend defines the execution boundary of the estimation
// pipeline. A Backend runs batches of circuits and returns one
// measurement-count histogram per circuit; RunChunked adapts a
// capacity-limited backend so callers always see a single flat,
// order-preserving result list.
package backend

import (
	"context"
	"fmt"

	"github.com/dyluth/qest/pkg/circuit"
)

// Counts is a measurement-count histogram: outcome bitstring to frequency.
// Keys are binary strings over the circuit's classical bits with the highest
// bit index leftmost; backends that group bits by register separate the
// registers with single spaces, last-declared register first.
type Counts map[string]int

// Total returns the histogram's total frequency.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// RunOptions carries per-submission execution settings.
type RunOptions struct {
	Shots   int   // repetitions per circuit, must be positive
	Seed    int64 // sampling seed, meaningful only when HasSeed is set
	HasSeed bool  // false means the backend picks its own entropy
}

// Backend executes batches of circuits.
type Backend interface {
	// Name identifies the backend in logs and result metadata.
	Name() string

	// MaxBatchSize is the largest number of circuits one Run call accepts.
	// Zero means unlimited.
	MaxBatchSize() int

	// Run executes the given circuits and returns one histogram per
	// circuit, in submission order.
	Run(ctx context.Context, circuits []*circuit.Circuit, opts RunOptions) ([]Counts, error)
}

// RunChunked submits circuits to b in MaxBatchSize-sized chunks and
// concatenates the per-chunk histograms back into one order-preserving
// list. A backend returning the wrong number of histograms for a chunk is
// reported as a backend failure.
func RunChunked(ctx context.Context, b Backend, circuits []*circuit.Circuit, opts RunOptions) ([]Counts, error) {
	limit := b.MaxBatchSize()
	if limit <= 0 || len(circuits) <= limit {
		counts, err := b.Run(ctx, circuits, opts)
		if err != nil {
			return nil, err
		}
		if len(counts) != len(circuits) {
			return nil, fmt.Errorf("backend %s returned %d histograms for %d circuits", b.Name(), len(counts), len(circuits))
		}
		return counts, nil
	}

	all := make([]Counts, 0, len(circuits))
	for start := 0; start < len(circuits); start += limit {
		end := start + limit
		if end > len(circuits) {
			end = len(circuits)
		}
		chunk := circuits[start:end]
		counts, err := b.Run(ctx, chunk, opts)
		if err != nil {
			return nil, fmt.Errorf("chunk starting at circuit %d failed: %w", start, err)
		}
		if len(counts) != len(chunk) {
			return nil, fmt.Errorf("backend %s returned %d histograms for a %d-circuit chunk", b.Name(), len(counts), len(chunk))
		}
		all = append(all, counts...)
	}
	return all, nil
}
