package estimator

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/pauli"
)

// expvalKey addresses one estimate: the binding index it was measured under
// and the lab-frame operator label it belongs to.
type expvalKey struct {
	bindIdx int
	label   string
}

// expvalEntry is one reconstructed per-operator estimate.
type expvalEntry struct {
	expectation float64
	variance    float64
}

// expvalTable holds every per-operator estimate of one pub.
type expvalTable map[expvalKey]expvalEntry

// buildExpvalTable decodes one histogram per variant into per-operator
// expectation values, keyed by the original lab-frame labels so later
// stages never see basis-local forms.
func buildExpvalTable(counts []backend.Counts, payloads []variantPayload) (expvalTable, error) {
	if len(counts) != len(payloads) {
		return nil, fmt.Errorf("%w: %d histograms for %d variants", ErrComputation, len(counts), len(payloads))
	}
	table := make(expvalTable)
	for i, c := range counts {
		p := payloads[i]
		evs, variances, err := expvalWithVariance(c, p.measured, p.measBits)
		if err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}
		for k, op := range p.original {
			table[expvalKey{p.bindIdx, op.Label()}] = expvalEntry{evs[k], variances[k]}
		}
	}
	return table, nil
}

// expvalWithVariance computes the expectation value and single-shot
// variance of each co-measured operator from one histogram. Outcome b
// contributes sign (-1)^popcount(mask & b), where mask marks the operator's
// non-identity bits in classical-bit order; the operator's own sign scales
// the result. Variance is 1 - ev^2, exact for a +/-1-valued observable.
func expvalWithVariance(c backend.Counts, measured []pauli.Operator, measBits int) ([]float64, []float64, error) {
	masks := make([]uint64, len(measured))
	for i, op := range measured {
		masks[i] = op.X | op.Z
	}

	sums := make([]float64, len(measured))
	total := 0
	for outcome, freq := range c {
		if freq < 0 {
			return nil, nil, fmt.Errorf("%w: negative frequency %d for outcome %q", ErrComputation, freq, outcome)
		}
		value, err := parseOutcome(outcome, measBits)
		if err != nil {
			return nil, nil, err
		}
		total += freq
		for i, mask := range masks {
			if bits.OnesCount64(mask&value)%2 == 1 {
				sums[i] -= float64(freq)
			} else {
				sums[i] += float64(freq)
			}
		}
	}
	if total == 0 {
		return nil, nil, fmt.Errorf("%w: histogram has zero total shots", ErrComputation)
	}

	evs := make([]float64, len(measured))
	variances := make([]float64, len(measured))
	for i := range measured {
		ev := sums[i] / float64(total) * float64(measured[i].Sign())
		evs[i] = ev
		variances[i] = 1 - ev*ev
	}
	return evs, variances, nil
}

// parseOutcome extracts the measurement register's bits from a histogram
// key. The synthetic register is composed last, so it owns the highest
// classical bits: the token before the first space when registers are
// space-separated, or the leftmost measBits characters of a plain
// concatenated key.
func parseOutcome(outcome string, measBits int) (uint64, error) {
	if i := strings.IndexByte(outcome, ' '); i >= 0 {
		outcome = outcome[:i]
	}
	if len(outcome) > measBits {
		outcome = outcome[:measBits]
	}
	if outcome == "" {
		return 0, fmt.Errorf("%w: empty outcome key", ErrComputation)
	}
	value, err := strconv.ParseUint(outcome, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: outcome %q is not a bitstring: %v", ErrComputation, outcome, err)
	}
	return value, nil
}
