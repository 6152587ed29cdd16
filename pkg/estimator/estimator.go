package estimator

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/circuit"
)

// DefaultPrecision is the target precision used when neither the run nor
// the pub specifies one. It implies 4096 shots.
const DefaultPrecision = 0.015625

// Options configures an Estimator.
type Options struct {
	// DefaultPrecision is the fallback target precision. Zero means
	// DefaultPrecision.
	DefaultPrecision float64

	// AbelianGrouping controls whether operators are grouped into
	// qubit-wise commuting sets before measurement. Nil means enabled.
	// Disabling trades more measurement configurations for
	// one-operator-per-circuit bookkeeping.
	AbelianGrouping *bool

	// Seed, when set, is passed to the backend on every batch so repeated
	// runs reproduce their histograms.
	Seed *int64
}

// Estimator evaluates expectation values of weighted Pauli-operator sums
// against parameterized circuits on an execution backend. It is safe for
// concurrent use; each Run produces an independent Job.
type Estimator struct {
	backend   backend.Backend
	precision float64
	grouping  bool
	seed      *int64
}

// New creates an Estimator on the given backend.
func New(b backend.Backend, opts Options) (*Estimator, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrValidation)
	}
	precision := opts.DefaultPrecision
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 0 {
		return nil, fmt.Errorf("%w: default precision %g, precision must be larger than 0", ErrValidation, opts.DefaultPrecision)
	}
	grouping := true
	if opts.AbelianGrouping != nil {
		grouping = *opts.AbelianGrouping
	}
	return &Estimator{
		backend:   b,
		precision: precision,
		grouping:  grouping,
		seed:      opts.Seed,
	}, nil
}

// Run validates pubs synchronously and submits them for estimation,
// returning an asynchronous Job. precision overrides the estimator's
// default for pubs without their own; zero means no override. All
// validation failures surface here, before any execution.
func (e *Estimator) Run(pubs []Pub, precision float64) (*Job, error) {
	if precision < 0 {
		return nil, fmt.Errorf("%w: run precision %g, precision must be larger than 0", ErrValidation, precision)
	}
	if len(pubs) == 0 {
		return nil, fmt.Errorf("%w: no pubs to run", ErrValidation)
	}
	coerced := make([]*coercedPub, len(pubs))
	for i, pub := range pubs {
		cp, err := coercePub(i, pub, precision, e.precision)
		if err != nil {
			return nil, err
		}
		coerced[i] = cp
	}
	return startJob(e, coerced), nil
}

// run executes all pubs grouped by shot count and reassembles the results
// in input pub order.
func (e *Estimator) run(ctx context.Context, pubs []*coercedPub) (*PrimitiveResult, error) {
	byShots := make(map[int][]int)
	for i, pub := range pubs {
		byShots[pub.shots] = append(byShots[pub.shots], i)
	}
	shotCounts := make([]int, 0, len(byShots))
	for shots := range byShots {
		shotCounts = append(shotCounts, shots)
	}
	sort.Ints(shotCounts) // batch order is unspecified; ascending keeps runs reproducible

	results := make([]PubResult, len(pubs))
	for _, shots := range shotCounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		indices := byShots[shots]
		batch := make([]*coercedPub, len(indices))
		for k, i := range indices {
			batch[k] = pubs[i]
		}
		batchResults, err := e.runShotBatch(ctx, batch, indices, shots)
		if err != nil {
			return nil, err
		}
		for k, i := range indices {
			results[i] = batchResults[k]
		}
	}

	return &PrimitiveResult{
		PubResults: results,
		Metadata:   ResultMetadata{Version: ResultVersion, Backend: e.backend.Name()},
	}, nil
}

// runShotBatch estimates pubs sharing one shot count: parallel
// preprocessing, one chunked backend submission, parallel postprocessing.
// origIdx carries each pub's input position for error reporting.
func (e *Estimator) runShotBatch(ctx context.Context, pubs []*coercedPub, origIdx []int, shots int) ([]PubResult, error) {
	pre := make([]*preprocessed, len(pubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pub := range pubs {
		i, pub := i, pub
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := preprocessPub(pub, e.grouping)
			if err != nil {
				return fmt.Errorf("pub %d: %w", origIdx[i], err)
			}
			pre[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []*circuit.Circuit
	offsets := make([]int, len(pubs)+1)
	for i, p := range pre {
		offsets[i] = len(flat)
		flat = append(flat, p.variants...)
	}
	offsets[len(pubs)] = len(flat)

	opts := backend.RunOptions{Shots: shots}
	if e.seed != nil {
		opts.Seed = *e.seed
		opts.HasSeed = true
	}
	counts, err := backend.RunChunked(ctx, e.backend, flat, opts)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", e.backend.Name(), err)
	}

	results := make([]PubResult, len(pubs))
	pg, pgctx := errgroup.WithContext(ctx)
	for i, pub := range pubs {
		i, pub := i, pub
		pg.Go(func() error {
			if err := pgctx.Err(); err != nil {
				return err
			}
			table, err := buildExpvalTable(counts[offsets[i]:offsets[i+1]], pre[i].payloads)
			if err != nil {
				return fmt.Errorf("pub %d: %w", origIdx[i], err)
			}
			r, err := postprocessPub(pub, pre[i], table, shots)
			if err != nil {
				return fmt.Errorf("pub %d: %w", origIdx[i], err)
			}
			results[i] = *r
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
