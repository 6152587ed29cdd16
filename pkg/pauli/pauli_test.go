package pauli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	t.Run("parses single-site operators", func(t *testing.T) {
		for label, want := range map[string]Operator{
			"I": {NumQubits: 1},
			"X": {NumQubits: 1, X: 1},
			"Y": {NumQubits: 1, X: 1, Z: 1},
			"Z": {NumQubits: 1, Z: 1},
		} {
			op, err := ParseLabel(label)
			require.NoError(t, err)
			assert.Equal(t, want, op, "label %s", label)
		}
	})

	t.Run("rightmost character is site zero", func(t *testing.T) {
		op, err := ParseLabel("XI")
		require.NoError(t, err)
		assert.Equal(t, uint64(0b10), op.X)
		assert.Equal(t, uint64(0), op.Z)
		assert.Equal(t, 2, op.NumQubits)
	})

	t.Run("parses sign prefixes", func(t *testing.T) {
		neg, err := ParseLabel("-ZZ")
		require.NoError(t, err)
		assert.True(t, neg.Neg)
		assert.Equal(t, -1, neg.Sign())

		pos, err := ParseLabel("+ZZ")
		require.NoError(t, err)
		assert.False(t, pos.Neg)
		assert.Equal(t, 1, pos.Sign())
	})

	t.Run("rejects malformed labels", func(t *testing.T) {
		for _, label := range []string{"", "-", "+", "XQ", "xz", "X Z"} {
			_, err := ParseLabel(label)
			assert.Error(t, err, "label %q", label)
		}
	})

	t.Run("rejects labels wider than 64 sites", func(t *testing.T) {
		wide := make([]byte, MaxQubits+1)
		for i := range wide {
			wide[i] = 'Z'
		}
		_, err := ParseLabel(string(wide))
		assert.Error(t, err)
	})
}

func TestLabel(t *testing.T) {
	t.Run("round trips through parse", func(t *testing.T) {
		for _, label := range []string{"I", "X", "IXYZ", "ZZZZ", "-YY", "XIIIZ"} {
			op, err := ParseLabel(label)
			require.NoError(t, err)
			assert.Equal(t, label, op.Label())
		}
	})

	t.Run("canonical form drops an explicit plus", func(t *testing.T) {
		op, err := ParseLabel("+XX")
		require.NoError(t, err)
		assert.Equal(t, "XX", op.Label())
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts well-formed operators", func(t *testing.T) {
		assert.NoError(t, Operator{NumQubits: 2, X: 0b11}.Validate())
		assert.NoError(t, Operator{NumQubits: MaxQubits, Z: ^uint64(0)}.Validate())
	})

	t.Run("rejects out-of-range widths", func(t *testing.T) {
		assert.Error(t, Operator{NumQubits: 0}.Validate())
		assert.Error(t, Operator{NumQubits: MaxQubits + 1}.Validate())
	})

	t.Run("rejects component bits beyond the width", func(t *testing.T) {
		assert.Error(t, Operator{NumQubits: 2, X: 0b100}.Validate())
		assert.Error(t, Operator{NumQubits: 2, Z: 0b1000}.Validate())
	})
}

func TestMeasuredSites(t *testing.T) {
	t.Run("returns non-identity sites ascending", func(t *testing.T) {
		assert.Equal(t, []int{0, 1}, MustParse("XZ").MeasuredSites())
		assert.Equal(t, []int{1}, MustParse("ZI").MeasuredSites())
		assert.Equal(t, []int{0, 2}, MustParse("XIZ").MeasuredSites())
	})

	t.Run("all-identity falls back to site zero", func(t *testing.T) {
		assert.Equal(t, []int{0}, MustParse("III").MeasuredSites())
	})
}

func TestQubitWiseCommutes(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"ZZ", "ZI", true},  // shared site carries the same component
		{"ZZ", "IZ", true},
		{"XI", "IZ", true},  // no shared non-identity site
		{"XY", "XY", true},
		{"II", "XY", true},  // identity commutes with everything
		{"XX", "ZZ", false}, // conflicting components at both sites
		{"XX", "YY", false},
		{"ZI", "XI", false},
		{"XZ", "XX", false}, // conflict at site 0 only
	}
	for _, tc := range cases {
		a, b := MustParse(tc.a), MustParse(tc.b)
		assert.Equal(t, tc.want, QubitWiseCommutes(a, b), "%s vs %s", tc.a, tc.b)
		assert.Equal(t, tc.want, QubitWiseCommutes(b, a), "%s vs %s must be symmetric", tc.b, tc.a)
	}

	t.Run("different widths never commute", func(t *testing.T) {
		assert.False(t, QubitWiseCommutes(MustParse("Z"), MustParse("ZZ")))
	})

	t.Run("sign does not affect commutation", func(t *testing.T) {
		assert.True(t, QubitWiseCommutes(MustParse("-ZZ"), MustParse("ZI")))
	})
}

func TestWeight(t *testing.T) {
	assert.Equal(t, 0, MustParse("III").Weight())
	assert.Equal(t, 2, MustParse("XIZ").Weight())
	assert.Equal(t, 3, MustParse("YYY").Weight())
}
