// Package pauli implements bit-packed Pauli operators: parsing and
// formatting of operator labels, qubit-wise commutation checks, greedy
// grouping into co-measurable sets, and the basis arithmetic the estimation
// pipeline is built on.
//
// An operator over n measurement sites is stored as two uint64 bitvectors
// plus a sign. Site numbering follows the little-endian label convention:
// site 0 is the rightmost character of a label, so "XI" applies X at site 1
// and identity at site 0.
package pauli

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxQubits is the widest operator the packed representation supports.
const MaxQubits = 64

// Operator is a single Pauli string with a sign. Site i carries identity
// when bit i is clear in both X and Z, an X factor when only X is set, a Z
// factor when only Z is set, and a Y factor when both are set.
//
// Operators are small value types. Equality is structural (==).
type Operator struct {
	NumQubits int    // number of measurement sites (1 to MaxQubits)
	X         uint64 // bit i set: X component present at site i
	Z         uint64 // bit i set: Z component present at site i
	Neg       bool   // true when the operator carries a -1 sign
}

// ParseLabel parses the canonical text form of an operator: an optional
// leading "+" or "-" followed by one character per site from the set
// {I, X, Y, Z}. The rightmost character is site 0.
func ParseLabel(label string) (Operator, error) {
	s := label
	neg := false
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	}
	if len(s) == 0 {
		return Operator{}, fmt.Errorf("pauli label %q has no sites", label)
	}
	if len(s) > MaxQubits {
		return Operator{}, fmt.Errorf("pauli label %q spans %d sites, maximum is %d", label, len(s), MaxQubits)
	}

	op := Operator{NumQubits: len(s), Neg: neg}
	for i := 0; i < len(s); i++ {
		site := uint(len(s) - 1 - i) // rightmost character is site 0
		switch s[i] {
		case 'I':
		case 'X':
			op.X |= 1 << site
		case 'Y':
			op.X |= 1 << site
			op.Z |= 1 << site
		case 'Z':
			op.Z |= 1 << site
		default:
			return Operator{}, fmt.Errorf("pauli label %q contains invalid character %q", label, s[i])
		}
	}
	return op, nil
}

// MustParse is ParseLabel for known-good labels; it panics on error.
func MustParse(label string) Operator {
	op, err := ParseLabel(label)
	if err != nil {
		panic(err)
	}
	return op
}

// Label renders the operator in its canonical text form. Positive operators
// carry no sign prefix, negative ones a leading "-".
func (o Operator) Label() string {
	var b strings.Builder
	b.Grow(o.NumQubits + 1)
	if o.Neg {
		b.WriteByte('-')
	}
	for i := o.NumQubits - 1; i >= 0; i-- {
		x := o.X>>uint(i)&1 == 1
		z := o.Z>>uint(i)&1 == 1
		switch {
		case x && z:
			b.WriteByte('Y')
		case x:
			b.WriteByte('X')
		case z:
			b.WriteByte('Z')
		default:
			b.WriteByte('I')
		}
	}
	return b.String()
}

// String implements fmt.Stringer.
func (o Operator) String() string {
	return o.Label()
}

// Sign returns the operator's scalar sign, +1 or -1.
func (o Operator) Sign() int {
	if o.Neg {
		return -1
	}
	return 1
}

// IsIdentity reports whether every site carries identity.
func (o Operator) IsIdentity() bool {
	return o.X == 0 && o.Z == 0
}

// Weight returns the number of non-identity sites.
func (o Operator) Weight() int {
	return bits.OnesCount64(o.X | o.Z)
}

// Validate checks that the operator's width is representable and that no
// component bit lies beyond it.
func (o Operator) Validate() error {
	if o.NumQubits < 1 || o.NumQubits > MaxQubits {
		return fmt.Errorf("operator must span between 1 and %d sites, got %d", MaxQubits, o.NumQubits)
	}
	if o.NumQubits < MaxQubits {
		mask := uint64(1)<<uint(o.NumQubits) - 1
		if o.X&^mask != 0 || o.Z&^mask != 0 {
			return fmt.Errorf("operator has component bits beyond site %d", o.NumQubits-1)
		}
	}
	return nil
}

// MeasuredSites returns the sites a measurement of this operator must read,
// in ascending order. An all-identity operator still needs one classical
// bit, so it falls back to reading site 0.
func (o Operator) MeasuredSites() []int {
	active := o.X | o.Z
	if active == 0 {
		return []int{0}
	}
	sites := make([]int, 0, bits.OnesCount64(active))
	for i := 0; i < o.NumQubits; i++ {
		if active>>uint(i)&1 == 1 {
			sites = append(sites, i)
		}
	}
	return sites
}

// QubitWiseCommutes reports whether a and b agree, at every site where both
// are non-identity, on which component applies. This is stricter than
// general Pauli commutation: it guarantees the pair shares a single
// measurement basis with no conflicting rotation at any site.
func QubitWiseCommutes(a, b Operator) bool {
	if a.NumQubits != b.NumQubits {
		return false
	}
	both := (a.X | a.Z) & (b.X | b.Z)
	diff := (a.X ^ b.X) | (a.Z ^ b.Z)
	return both&diff == 0
}
