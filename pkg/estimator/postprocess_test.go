package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/qest/pkg/circuit"
	"github.com/dyluth/qest/pkg/pauli"
)

func TestPostprocessPub(t *testing.T) {
	prepare := func(t *testing.T, obs *ObservablesArray) (*coercedPub, *preprocessed) {
		t.Helper()
		cp, err := coercePub(0, Pub{Circuit: circuit.New(1), Observables: obs}, 0, 0.1)
		require.NoError(t, err)
		pre, err := preprocessPub(cp, true)
		require.NoError(t, err)
		return cp, pre
	}

	t.Run("single operator estimate with propagated error", func(t *testing.T) {
		cp, pre := prepare(t, Observable(pauli.Sum{"Z": 1}))
		table := expvalTable{
			{0, "Z"}: {expectation: 0.4, variance: 0.84},
		}
		res, err := postprocessPub(cp, pre, table, 1000)
		require.NoError(t, err)

		require.Len(t, res.EVs, 1)
		assert.InDelta(t, 0.4, real(res.EVs[0]), 1e-12)
		assert.Zero(t, imag(res.EVs[0]))
		// std = sqrt(0.84) / sqrt(1000)
		assert.InDelta(t, 0.02898, res.Stds[0], 1e-5)
		assert.Equal(t, 1000, res.Metadata.Shots)
		assert.Equal(t, 0.1, res.Metadata.TargetPrecision)
	})

	t.Run("coefficients weight the sum and the error bound", func(t *testing.T) {
		cp, pre := prepare(t, Observable(pauli.Sum{"Z": 2, "X": -0.5}))
		table := expvalTable{
			{0, "Z"}: {expectation: 0.5, variance: 0.75},
			{0, "X"}: {expectation: -0.2, variance: 0.96},
		}
		res, err := postprocessPub(cp, pre, table, 100)
		require.NoError(t, err)

		// 2*0.5 + (-0.5)*(-0.2)
		assert.InDelta(t, 1.1, real(res.EVs[0]), 1e-12)
		// (2*sqrt(0.75) + 0.5*sqrt(0.96)) / sqrt(100)
		want := (2*math.Sqrt(0.75) + 0.5*math.Sqrt(0.96)) / 10
		assert.InDelta(t, want, res.Stds[0], 1e-12)
	})

	t.Run("complex coefficients flow into the value", func(t *testing.T) {
		cp, pre := prepare(t, Observable(pauli.Sum{"Z": complex(0, 1)}))
		table := expvalTable{
			{0, "Z"}: {expectation: 0.4, variance: 0.84},
		}
		res, err := postprocessPub(cp, pre, table, 400)
		require.NoError(t, err)

		assert.Zero(t, real(res.EVs[0]))
		assert.InDelta(t, 0.4, imag(res.EVs[0]), 1e-12)
		// |i| = 1, so the bound matches the plain case
		assert.InDelta(t, math.Sqrt(0.84)/20, res.Stds[0], 1e-12)
	})

	t.Run("broadcast cells read their own estimates", func(t *testing.T) {
		obs := Observables(pauli.Sum{"Z": 1}, pauli.Sum{"X": 1})
		cp, pre := prepare(t, obs)
		table := expvalTable{
			{0, "Z"}: {expectation: 1, variance: 0},
			{0, "X"}: {expectation: -1, variance: 0},
		}
		res, err := postprocessPub(cp, pre, table, 100)
		require.NoError(t, err)

		require.Equal(t, []int{2}, res.Shape)
		assert.Equal(t, complex(1, 0), res.EVs[0])
		assert.Equal(t, complex(-1, 0), res.EVs[1])
		assert.Equal(t, 0.0, res.Stds[0])
	})

	t.Run("missing estimates fail", func(t *testing.T) {
		cp, pre := prepare(t, Observable(pauli.Sum{"Z": 1}))
		_, err := postprocessPub(cp, pre, expvalTable{}, 100)
		require.Error(t, err)
		assert.True(t, IsComputationError(err))
		assert.Contains(t, err.Error(), `"Z"`)
	})
}

func TestPubResultAccessors(t *testing.T) {
	res := &PubResult{
		EVs:   []complex128{1, 2, 3, 4, 5, 6},
		Stds:  []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		Shape: []int{2, 3},
	}

	assert.Equal(t, complex(6, 0), res.EVAt(1, 2))
	assert.Equal(t, 0.4, res.StdAt(1, 0))
	assert.Equal(t, complex(1, 0), res.EVAt(0, 0))

	t.Run("rank mismatch panics", func(t *testing.T) {
		assert.Panics(t, func() { res.EVAt(1) })
	})

	t.Run("out of range panics", func(t *testing.T) {
		assert.Panics(t, func() { res.StdAt(2, 0) })
	})
}
