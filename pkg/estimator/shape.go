package estimator

import "fmt"

// Broadcasting follows trailing-dimension alignment: shapes are compared
// right-aligned, equal sizes match, and a size-1 dimension stretches to its
// counterpart. A rank-0 (empty) shape is a scalar.

// broadcastShapes returns the common shape of a and b, or an error when the
// shapes are incompatible.
func broadcastShapes(a, b []int) ([]int, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	if rank == 0 {
		return nil, nil
	}
	out := make([]int, rank)
	for i := 1; i <= rank; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[rank-i] = da
		case da == 1:
			out[rank-i] = db
		case db == 1:
			out[rank-i] = da
		default:
			return nil, fmt.Errorf("shapes %v and %v are not broadcast-compatible", a, b)
		}
	}
	return out, nil
}

// shapeSize returns the number of elements a shape holds. A scalar shape
// holds one.
func shapeSize(shape []int) int {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return size
}

// unravel converts a row-major flat index into a multi-index.
func unravel(flat int, shape []int) []int {
	idx := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		idx[i] = flat % shape[i]
		flat /= shape[i]
	}
	return idx
}

// broadcastFlat maps a multi-index in the broadcast shape to the row-major
// flat index of a source array with the given shape: dimensions right-align
// and stretched (size-1) dimensions clamp to zero.
func broadcastFlat(idx []int, shape []int) int {
	flat := 0
	offset := len(idx) - len(shape)
	for i, d := range shape {
		j := idx[offset+i]
		if d == 1 {
			j = 0
		}
		flat = flat*d + j
	}
	return flat
}
