package circuit

import "math"

// inversePairs lists the single-qubit gates the peephole pass cancels when
// adjacent on a qubit.
var inversePairs = map[string]string{
	"h":   "h",
	"x":   "x",
	"y":   "y",
	"z":   "z",
	"s":   "sdg",
	"sdg": "s",
}

// SimplifySingleQubit runs a peephole pass over each circuit: adjacent
// inverse single-qubit pairs cancel, adjacent bound rotations about the same
// axis merge, and zero rotations drop. "Adjacent" means no intervening gate
// touches the qubit. Gate semantics, gate order across qubits, and classical
// registers are preserved; the inputs are not modified.
func SimplifySingleQubit(circuits []*Circuit) []*Circuit {
	out := make([]*Circuit, len(circuits))
	for i, c := range circuits {
		out[i] = simplify(c)
	}
	return out
}

func simplify(c *Circuit) *Circuit {
	cp := c.Copy()
	for {
		gates, changed := simplifyPass(cp.Gates)
		cp.Gates = gates
		if !changed {
			return cp
		}
	}
}

// simplifyPass applies at most one rewrite and reports whether it did.
// Every rewrite strictly shrinks the gate list, so iterating to fixpoint
// terminates.
func simplifyPass(gates []Gate) ([]Gate, bool) {
	for i, g := range gates {
		if !isSingleQubit(g) {
			continue
		}
		if isRotation(g.Name) && g.Param == "" && isZeroAngle(g.Angle) {
			return removeAt(gates, i), true
		}
		j, ok := nextOnQubit(gates, i)
		if !ok || !isSingleQubit(gates[j]) {
			continue
		}
		next := gates[j]
		if inv, exists := inversePairs[g.Name]; exists && next.Name == inv {
			return removePair(gates, i, j), true
		}
		if isRotation(g.Name) && next.Name == g.Name && g.Param == "" && next.Param == "" {
			merged := g.clone()
			merged.Angle = g.Angle + next.Angle
			rest := removePair(gates, i, j)
			if isZeroAngle(merged.Angle) {
				return rest, true
			}
			out := make([]Gate, 0, len(rest)+1)
			out = append(out, rest[:i]...)
			out = append(out, merged)
			out = append(out, rest[i:]...)
			return out, true
		}
	}
	return gates, false
}

func isSingleQubit(g Gate) bool {
	return len(g.Qubits) == 1 && g.Name != "measure"
}

func isRotation(name string) bool {
	return name == "rx" || name == "ry" || name == "rz"
}

// isZeroAngle treats any multiple of a full turn as zero.
func isZeroAngle(angle float64) bool {
	const eps = 1e-12
	m := math.Mod(angle, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m < eps || 2*math.Pi-m < eps
}

// nextOnQubit returns the index of the next gate after i touching gate i's
// qubit.
func nextOnQubit(gates []Gate, i int) (int, bool) {
	q := gates[i].Qubits[0]
	for j := i + 1; j < len(gates); j++ {
		for _, gq := range gates[j].Qubits {
			if gq == q {
				return j, true
			}
		}
	}
	return 0, false
}

func removeAt(gates []Gate, i int) []Gate {
	out := make([]Gate, 0, len(gates)-1)
	out = append(out, gates[:i]...)
	out = append(out, gates[i+1:]...)
	return out
}

func removePair(gates []Gate, i, j int) []Gate {
	out := make([]Gate, 0, len(gates)-2)
	out = append(out, gates[:i]...)
	out = append(out, gates[i+1:j]...)
	out = append(out, gates[j+1:]...)
	return out
}
