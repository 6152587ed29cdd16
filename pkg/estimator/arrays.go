package estimator

import (
	"fmt"

	"github.com/dyluth/qest/pkg/pauli"
)

// BindingsArray is an N-dimensional array of named parameter value sets in
// row-major order. A rank-0 array holds exactly one value set.
type BindingsArray struct {
	shape  []int
	values []map[string]float64
}

// NewBindingsArray creates an array of the given shape over row-major value
// sets. Every dimension must be positive and len(values) must equal the
// shape's element count.
func NewBindingsArray(shape []int, values []map[string]float64) (*BindingsArray, error) {
	if err := checkShape(shape, len(values), "bindings"); err != nil {
		return nil, err
	}
	return &BindingsArray{
		shape:  append([]int(nil), shape...),
		values: append([]map[string]float64(nil), values...),
	}, nil
}

// NoBindings returns a scalar bindings array with an empty value set, for
// circuits without free parameters.
func NoBindings() *BindingsArray {
	return &BindingsArray{values: []map[string]float64{{}}}
}

// Bindings returns a scalar bindings array holding one value set.
func Bindings(values map[string]float64) *BindingsArray {
	return &BindingsArray{values: []map[string]float64{values}}
}

// Shape returns a copy of the array's shape; rank 0 means scalar.
func (b *BindingsArray) Shape() []int {
	return append([]int(nil), b.shape...)
}

// Size returns the number of value sets.
func (b *BindingsArray) Size() int {
	return len(b.values)
}

// At returns the value set at a row-major flat index.
func (b *BindingsArray) At(flat int) map[string]float64 {
	return b.values[flat]
}

// ObservablesArray is an N-dimensional array of operator sums in row-major
// order. A rank-0 array holds exactly one sum.
type ObservablesArray struct {
	shape []int
	sums  []pauli.Sum
}

// NewObservablesArray creates an array of the given shape over row-major
// sums.
func NewObservablesArray(shape []int, sums []pauli.Sum) (*ObservablesArray, error) {
	if err := checkShape(shape, len(sums), "observables"); err != nil {
		return nil, err
	}
	return &ObservablesArray{
		shape: append([]int(nil), shape...),
		sums:  append([]pauli.Sum(nil), sums...),
	}, nil
}

// Observable returns a scalar observables array holding one sum.
func Observable(sum pauli.Sum) *ObservablesArray {
	return &ObservablesArray{sums: []pauli.Sum{sum}}
}

// Observables returns a rank-1 observables array over the given sums.
func Observables(sums ...pauli.Sum) *ObservablesArray {
	return &ObservablesArray{
		shape: []int{len(sums)},
		sums:  append([]pauli.Sum(nil), sums...),
	}
}

// Shape returns a copy of the array's shape; rank 0 means scalar.
func (o *ObservablesArray) Shape() []int {
	return append([]int(nil), o.shape...)
}

// Size returns the number of sums.
func (o *ObservablesArray) Size() int {
	return len(o.sums)
}

// At returns the sum at a row-major flat index.
func (o *ObservablesArray) At(flat int) pauli.Sum {
	return o.sums[flat]
}

func checkShape(shape []int, n int, what string) error {
	for _, d := range shape {
		if d < 1 {
			return fmt.Errorf("invalid %s shape %v: dimensions must be positive", what, shape)
		}
	}
	if n != shapeSize(shape) {
		return fmt.Errorf("%s shape %v needs %d elements, got %d", what, shape, shapeSize(shape), n)
	}
	return nil
}
