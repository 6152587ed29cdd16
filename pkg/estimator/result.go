package estimator

import "fmt"

// ResultVersion tags the result format carried in run metadata.
const ResultVersion = 2

// PubMetadata records how one pub's estimates were produced.
type PubMetadata struct {
	TargetPrecision float64 `json:"target_precision"` // resolved precision the shot count derives from
	Shots           int     `json:"shots"`            // shots per measurement configuration
}

// PubResult holds one pub's estimates: expectation values and standard
// errors, both row-major over the pub's broadcast shape. A returned result
// is owned by the caller and never mutated by the estimator.
type PubResult struct {
	EVs      []complex128 `json:"-"`     // weighted expectation values
	Stds     []float64    `json:"stds"`  // propagated standard errors
	Shape    []int        `json:"shape"` // broadcast of (bindings, observables)
	Metadata PubMetadata  `json:"metadata"`
}

// EVAt returns the expectation value at a multi-index. It panics on a
// malformed index, mirroring slice indexing.
func (r *PubResult) EVAt(idx ...int) complex128 {
	return r.EVs[r.flatIndex(idx)]
}

// StdAt returns the standard error at a multi-index.
func (r *PubResult) StdAt(idx ...int) float64 {
	return r.Stds[r.flatIndex(idx)]
}

func (r *PubResult) flatIndex(idx []int) int {
	if len(idx) != len(r.Shape) {
		panic(fmt.Sprintf("index rank %d does not match result rank %d", len(idx), len(r.Shape)))
	}
	flat := 0
	for i, d := range r.Shape {
		if idx[i] < 0 || idx[i] >= d {
			panic(fmt.Sprintf("index %v out of range for shape %v", idx, r.Shape))
		}
		flat = flat*d + idx[i]
	}
	return flat
}

// ResultMetadata describes one whole run.
type ResultMetadata struct {
	Version int    `json:"version"` // result format version
	Backend string `json:"backend"` // name of the executing backend
}

// PrimitiveResult collects pub results in input pub order.
type PrimitiveResult struct {
	PubResults []PubResult    `json:"pub_results"`
	Metadata   ResultMetadata `json:"metadata"`
}
