package estimator

import (
	"fmt"
	"math"
	"sort"

	"github.com/dyluth/qest/pkg/circuit"
)

// Pub is one estimation work unit: a circuit, the operator sums to estimate
// against it, the parameter bindings to close over its free parameters, and
// an optional target precision.
//
// Precision is optional at every level. A nil pub precision falls back to
// the run-level precision, then to the estimator's default; the resolved
// value must be strictly positive.
type Pub struct {
	Circuit     *circuit.Circuit
	Observables *ObservablesArray
	Parameters  *BindingsArray // nil means the circuit has no free parameters
	Precision   *float64       // nil means inherit
}

// shotsForPrecision converts a target precision into the implied shot
// count, ceil(1 / precision^2).
func shotsForPrecision(precision float64) int {
	return int(math.Ceil(1.0 / (precision * precision)))
}

// coercedPub is a validated pub with its precision resolved and its
// broadcast shape computed.
type coercedPub struct {
	circuit   *circuit.Circuit
	obs       *ObservablesArray
	params    *BindingsArray
	precision float64
	shots     int
	shape     []int // broadcast of (params, obs)
}

// coercePub validates one pub and resolves its precision against the
// run-level and default values. A zero runPrecision means no run-level
// override. Everything rejected here is a validation error; no backend call
// has happened yet.
func coercePub(index int, pub Pub, runPrecision, defaultPrecision float64) (*coercedPub, error) {
	if pub.Circuit == nil {
		return nil, fmt.Errorf("%w: pub %d has no circuit", ErrValidation, index)
	}
	if pub.Circuit.NumQubits < 1 {
		return nil, fmt.Errorf("%w: pub %d circuit has no qubits", ErrValidation, index)
	}
	if pub.Observables == nil || pub.Observables.Size() == 0 {
		return nil, fmt.Errorf("%w: pub %d has no observables", ErrValidation, index)
	}
	params := pub.Parameters
	if params == nil {
		params = NoBindings()
	}

	precision := defaultPrecision
	if runPrecision > 0 {
		precision = runPrecision
	}
	if pub.Precision != nil {
		precision = *pub.Precision
	}
	if precision <= 0 {
		return nil, fmt.Errorf("%w: pub %d resolved precision %g, precision must be larger than 0", ErrValidation, index, precision)
	}

	for flat := 0; flat < pub.Observables.Size(); flat++ {
		if err := pub.Observables.At(flat).Validate(pub.Circuit.NumQubits); err != nil {
			return nil, fmt.Errorf("%w: pub %d observables[%d]: %v", ErrValidation, index, flat, err)
		}
	}

	free := pub.Circuit.Parameters()
	for flat := 0; flat < params.Size(); flat++ {
		if err := checkBindingNames(params.At(flat), free); err != nil {
			return nil, fmt.Errorf("%w: pub %d bindings[%d]: %v", ErrValidation, index, flat, err)
		}
	}

	shape, err := broadcastShapes(params.Shape(), pub.Observables.Shape())
	if err != nil {
		return nil, fmt.Errorf("%w: pub %d: %v", ErrValidation, index, err)
	}

	return &coercedPub{
		circuit:   pub.Circuit,
		obs:       pub.Observables,
		params:    params,
		precision: precision,
		shots:     shotsForPrecision(precision),
		shape:     shape,
	}, nil
}

// checkBindingNames verifies that a value set covers the circuit's free
// parameters exactly: no parameter unbound, no value unclaimed.
func checkBindingNames(values map[string]float64, free []string) error {
	for _, name := range free {
		if _, ok := values[name]; !ok {
			return fmt.Errorf("no value for circuit parameter %q", name)
		}
	}
	if len(values) == len(free) {
		return nil
	}
	known := make(map[string]bool, len(free))
	for _, name := range free {
		known[name] = true
	}
	extra := make([]string, 0, len(values))
	for name := range values {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return fmt.Errorf("value for unknown parameter %q", extra[0])
}
