package estimator

import (
	"fmt"
	"math"
	"math/cmplx"
)

// postprocessPub recombines per-operator estimates into broadcast-shaped
// results. Per index, evs accumulates coeff * ev over the sum's terms in
// sorted label order and the error accumulator adds |coeff| * sqrt(variance);
// dividing the accumulated bound by sqrt(shots) yields the standard error.
// The triangle-inequality bound is intentional: downstream consumers depend
// on this exact formula rather than an independence assumption.
func postprocessPub(pub *coercedPub, pre *preprocessed, table expvalTable, shots int) (*PubResult, error) {
	size := shapeSize(pre.shape)
	evs := make([]complex128, size)
	stds := make([]float64, size)
	sqrtShots := math.Sqrt(float64(shots))

	for flat := 0; flat < size; flat++ {
		sum := pub.obs.At(pre.obsIdx[flat])
		bindIdx := pre.bindIdx[flat]
		bound := 0.0
		for _, label := range sum.Labels() {
			entry, ok := table[expvalKey{bindIdx, label}]
			if !ok {
				return nil, fmt.Errorf("%w: no estimate for operator %q at bindings[%d]", ErrComputation, label, bindIdx)
			}
			coeff := sum[label]
			evs[flat] += coeff * complex(entry.expectation, 0)
			bound += cmplx.Abs(coeff) * math.Sqrt(entry.variance)
		}
		stds[flat] = bound / sqrtShots
	}

	return &PubResult{
		EVs:   evs,
		Stds:  stds,
		Shape: append([]int(nil), pre.shape...),
		Metadata: PubMetadata{
			TargetPrecision: pub.precision,
			Shots:           shots,
		},
	}, nil
}
