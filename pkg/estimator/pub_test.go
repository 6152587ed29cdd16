package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/qest/pkg/circuit"
	"github.com/dyluth/qest/pkg/pauli"
)

func f64(v float64) *float64 {
	return &v
}

func TestShotsForPrecision(t *testing.T) {
	cases := []struct {
		precision float64
		shots     int
	}{
		{1.0, 1},
		{0.1, 100},
		{0.0625, 256},
		{0.015625, 4096},
		{0.01, 10000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.shots, shotsForPrecision(tc.precision), "precision %g", tc.precision)
	}
}

func TestCoercePub(t *testing.T) {
	simple := func() Pub {
		return Pub{
			Circuit:     circuit.New(1),
			Observables: Observable(pauli.Sum{"Z": 1}),
		}
	}
	withParam := func() *circuit.Circuit {
		c := circuit.New(1)
		c.RZParam("theta", 0)
		return c
	}

	t.Run("precision falls back to the default", func(t *testing.T) {
		cp, err := coercePub(0, simple(), 0, 0.015625)
		require.NoError(t, err)
		assert.Equal(t, 0.015625, cp.precision)
		assert.Equal(t, 4096, cp.shots)
	})

	t.Run("run precision overrides the default", func(t *testing.T) {
		cp, err := coercePub(0, simple(), 0.1, 0.015625)
		require.NoError(t, err)
		assert.Equal(t, 0.1, cp.precision)
		assert.Equal(t, 100, cp.shots)
	})

	t.Run("pub precision overrides everything", func(t *testing.T) {
		pub := simple()
		pub.Precision = f64(0.0625)
		cp, err := coercePub(0, pub, 0.1, 0.015625)
		require.NoError(t, err)
		assert.Equal(t, 0.0625, cp.precision)
		assert.Equal(t, 256, cp.shots)
	})

	t.Run("non-positive resolved precision fails", func(t *testing.T) {
		pub := simple()
		pub.Precision = f64(-0.5)
		_, err := coercePub(3, pub, 0, 0.015625)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), "pub 3")
		assert.Contains(t, err.Error(), "larger than 0")
	})

	t.Run("missing circuit fails", func(t *testing.T) {
		pub := simple()
		pub.Circuit = nil
		_, err := coercePub(0, pub, 0, 0.1)
		assert.True(t, IsValidationError(err))
	})

	t.Run("missing observables fail", func(t *testing.T) {
		pub := simple()
		pub.Observables = nil
		_, err := coercePub(0, pub, 0, 0.1)
		assert.True(t, IsValidationError(err))
	})

	t.Run("observable width must match the circuit", func(t *testing.T) {
		pub := simple()
		pub.Observables = Observable(pauli.Sum{"ZZ": 1})
		_, err := coercePub(0, pub, 0, 0.1)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("nil parameters default to a single empty binding", func(t *testing.T) {
		cp, err := coercePub(0, simple(), 0, 0.1)
		require.NoError(t, err)
		assert.Equal(t, 1, cp.params.Size())
		assert.Nil(t, cp.shape)
	})

	t.Run("every circuit parameter needs a value", func(t *testing.T) {
		pub := Pub{
			Circuit:     withParam(),
			Observables: Observable(pauli.Sum{"Z": 1}),
		}
		_, err := coercePub(0, pub, 0, 0.1)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), `"theta"`)
	})

	t.Run("values for unknown parameters fail", func(t *testing.T) {
		pub := Pub{
			Circuit:     withParam(),
			Observables: Observable(pauli.Sum{"Z": 1}),
			Parameters:  Bindings(map[string]float64{"theta": 1, "phi": 2}),
		}
		_, err := coercePub(0, pub, 0, 0.1)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), `"phi"`)
	})

	t.Run("broadcast shape is computed", func(t *testing.T) {
		params, err := NewBindingsArray([]int{3}, []map[string]float64{
			{"theta": 0.1}, {"theta": 0.2}, {"theta": 0.3},
		})
		require.NoError(t, err)

		pub := Pub{
			Circuit:     withParam(),
			Observables: Observable(pauli.Sum{"Z": 1}),
			Parameters:  params,
		}
		cp, err := coercePub(0, pub, 0, 0.1)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, cp.shape)

		// a length-one observable axis stretches across the bindings
		pub.Observables = Observables(pauli.Sum{"Z": 1})
		cp, err = coercePub(0, pub, 0, 0.1)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, cp.shape)
	})

	t.Run("incompatible shapes fail", func(t *testing.T) {
		params, err := NewBindingsArray([]int{2}, []map[string]float64{{}, {}})
		require.NoError(t, err)
		obs, err := NewObservablesArray([]int{3}, []pauli.Sum{
			{"Z": 1}, {"Z": 1}, {"Z": 1},
		})
		require.NoError(t, err)
		pub := Pub{
			Circuit:     circuit.New(1),
			Observables: obs,
			Parameters:  params,
		}
		_, err = coercePub(0, pub, 0, 0.1)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}
