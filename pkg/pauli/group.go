package pauli

import (
	"fmt"
	"math/bits"
)

// GroupQubitWise partitions ops into qubit-wise commuting groups using
// greedy first-fit: operators are visited in input order and each joins the
// first group whose every member it commutes with qubit-wise, opening a new
// group otherwise. Identical input always produces identical groups. With
// grouping disabled every operator gets its own singleton group.
func GroupQubitWise(ops []Operator, grouping bool) [][]Operator {
	if !grouping {
		groups := make([][]Operator, len(ops))
		for i, op := range ops {
			groups[i] = []Operator{op}
		}
		return groups
	}

	var groups [][]Operator
next:
	for _, op := range ops {
		for i, group := range groups {
			fits := true
			for _, member := range group {
				if !QubitWiseCommutes(op, member) {
					fits = false
					break
				}
			}
			if fits {
				groups[i] = append(group, op)
				continue next
			}
		}
		groups = append(groups, []Operator{op})
	}
	return groups
}

// UnionBasis returns the joint measurement basis of a group: the OR of the
// members' X vectors and the OR of their Z vectors, with a positive sign.
// For a qubit-wise commuting group the union is itself a well-formed Pauli
// string, since no two members disagree at a shared site.
func UnionBasis(group []Operator) (Operator, error) {
	if len(group) == 0 {
		return Operator{}, fmt.Errorf("cannot build a measurement basis for an empty group")
	}
	basis := Operator{NumQubits: group[0].NumQubits}
	for _, op := range group {
		if op.NumQubits != basis.NumQubits {
			return Operator{}, fmt.Errorf("mixed operator widths in group: %d and %d sites", basis.NumQubits, op.NumQubits)
		}
		basis.X |= op.X
		basis.Z |= op.Z
	}
	return basis, nil
}

// Restrict re-expresses op over the given sites: local bit k of the result
// mirrors site sites[k] of op, and the sign carries through. Restricting
// away a non-identity site would change the operator's meaning, so sites
// must cover every non-identity site of op.
func Restrict(op Operator, sites []int) (Operator, error) {
	if len(sites) == 0 {
		return Operator{}, fmt.Errorf("cannot restrict to zero sites")
	}
	if len(sites) > MaxQubits {
		return Operator{}, fmt.Errorf("cannot restrict to %d sites, maximum is %d", len(sites), MaxQubits)
	}

	r := Operator{NumQubits: len(sites), Neg: op.Neg}
	covered := uint64(0)
	for k, q := range sites {
		if q < 0 || q >= op.NumQubits {
			return Operator{}, fmt.Errorf("site %d out of range for a %d-site operator", q, op.NumQubits)
		}
		covered |= 1 << uint(q)
		if op.X>>uint(q)&1 == 1 {
			r.X |= 1 << uint(k)
		}
		if op.Z>>uint(q)&1 == 1 {
			r.Z |= 1 << uint(k)
		}
	}
	if missing := (op.X | op.Z) &^ covered; missing != 0 {
		return Operator{}, fmt.Errorf("restriction drops %d non-identity site(s) of %s", bits.OnesCount64(missing), op.Label())
	}
	return r, nil
}
