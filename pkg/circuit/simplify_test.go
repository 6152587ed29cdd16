package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateNames(c *Circuit) []string {
	names := make([]string, len(c.Gates))
	for i, g := range c.Gates {
		names[i] = g.Name
	}
	return names
}

func TestSimplifySingleQubit(t *testing.T) {
	t.Run("cancels adjacent inverse pairs", func(t *testing.T) {
		c := New(1)
		c.H(0)
		c.H(0)
		c.X(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Equal(t, []string{"x"}, gateNames(out))
	})

	t.Run("cancels s against sdg", func(t *testing.T) {
		c := New(1)
		c.S(0)
		c.SDG(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Empty(t, out.Gates)
	})

	t.Run("cascades cancellations", func(t *testing.T) {
		// h x x h collapses in two rounds
		c := New(1)
		c.H(0)
		c.X(0)
		c.X(0)
		c.H(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Empty(t, out.Gates)
	})

	t.Run("merges same-axis rotations", func(t *testing.T) {
		c := New(1)
		c.RZ(0.25, 0)
		c.RZ(0.5, 0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		require.Len(t, out.Gates, 1)
		assert.Equal(t, "rz", out.Gates[0].Name)
		assert.InDelta(t, 0.75, out.Gates[0].Angle, 1e-12)
	})

	t.Run("merged rotations summing to a full turn drop", func(t *testing.T) {
		c := New(1)
		c.RX(math.Pi, 0)
		c.RX(math.Pi, 0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Empty(t, out.Gates)
	})

	t.Run("drops zero rotations", func(t *testing.T) {
		c := New(1)
		c.RZ(0, 0)
		c.H(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Equal(t, []string{"h"}, gateNames(out))
	})

	t.Run("two-qubit gates block cancellation", func(t *testing.T) {
		c := New(2)
		c.H(0)
		c.CX(0, 1)
		c.H(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Equal(t, []string{"h", "cx", "h"}, gateNames(out))
	})

	t.Run("gates on other qubits do not block", func(t *testing.T) {
		c := New(2)
		c.H(0)
		c.X(1)
		c.H(0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Equal(t, []string{"x"}, gateNames(out))
	})

	t.Run("unbound rotations are left alone", func(t *testing.T) {
		c := New(1)
		c.RZParam("theta", 0)
		c.RZParam("theta", 0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Len(t, out.Gates, 2)
	})

	t.Run("measurements never cancel", func(t *testing.T) {
		c := New(1)
		require.NoError(t, c.AddRegister(ClassicalRegister{Name: "c", Size: 2}))
		c.Measure(0, 0)
		c.Measure(0, 1)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Len(t, out.Gates, 2)
	})

	t.Run("preserves classical registers and inputs", func(t *testing.T) {
		c := New(1)
		require.NoError(t, c.AddRegister(ClassicalRegister{Name: "c", Size: 1}))
		c.H(0)
		c.H(0)
		c.Measure(0, 0)

		out := SimplifySingleQubit([]*Circuit{c})[0]
		assert.Equal(t, c.Cregs, out.Cregs)
		assert.Equal(t, []string{"measure"}, gateNames(out))
		assert.Equal(t, []string{"h", "h", "measure"}, gateNames(c), "input must not be modified")
	})
}
