// Package circuit provides a minimal gate-list program model: named single-
// and two-qubit gates, classical registers, free-parameter binding, and
// composition. The estimation pipeline builds basis-change measurement
// programs with it and execution backends consume it directly, so the model
// is also the wire format batches are serialized from.
package circuit

import (
	"fmt"
	"sort"
)

// Gate is one instruction in a circuit's gate list. Rotation gates (rx, ry,
// rz) carry either a concrete angle or the name of a free parameter to bind
// later; no other gate uses either field. A measure gate pairs one qubit
// with one classical bit.
type Gate struct {
	Name   string  `json:"name"`             // h, x, y, z, s, sdg, rx, ry, rz, cx, cz, measure
	Qubits []int   `json:"qubits"`           // qubit operands
	Angle  float64 `json:"angle,omitempty"`  // rotation angle in radians
	Param  string  `json:"param,omitempty"`  // free parameter name, empty once bound
	Clbits []int   `json:"clbits,omitempty"` // classical bit targets for measure
}

// ClassicalRegister is a named block of classical bits. Registers
// concatenate in declaration order: the first register owns the lowest bit
// indices, and outcome bitstrings print the highest bit leftmost.
type ClassicalRegister struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Circuit is an ordered gate list over a fixed number of qubits plus the
// classical registers measurement outcomes land in.
type Circuit struct {
	NumQubits int                 `json:"num_qubits"`
	Gates     []Gate              `json:"gates"`
	Cregs     []ClassicalRegister `json:"cregs,omitempty"`
}

// New creates an empty circuit over numQubits qubits.
func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

func (c *Circuit) add(g Gate) {
	c.Gates = append(c.Gates, g)
}

// H appends a Hadamard gate on qubit q.
func (c *Circuit) H(q int) { c.add(Gate{Name: "h", Qubits: []int{q}}) }

// X appends a Pauli-X gate on qubit q.
func (c *Circuit) X(q int) { c.add(Gate{Name: "x", Qubits: []int{q}}) }

// Y appends a Pauli-Y gate on qubit q.
func (c *Circuit) Y(q int) { c.add(Gate{Name: "y", Qubits: []int{q}}) }

// Z appends a Pauli-Z gate on qubit q.
func (c *Circuit) Z(q int) { c.add(Gate{Name: "z", Qubits: []int{q}}) }

// S appends a phase gate on qubit q.
func (c *Circuit) S(q int) { c.add(Gate{Name: "s", Qubits: []int{q}}) }

// SDG appends an inverse phase gate on qubit q.
func (c *Circuit) SDG(q int) { c.add(Gate{Name: "sdg", Qubits: []int{q}}) }

// RX appends an X-axis rotation by angle radians on qubit q.
func (c *Circuit) RX(angle float64, q int) { c.add(Gate{Name: "rx", Qubits: []int{q}, Angle: angle}) }

// RY appends a Y-axis rotation by angle radians on qubit q.
func (c *Circuit) RY(angle float64, q int) { c.add(Gate{Name: "ry", Qubits: []int{q}, Angle: angle}) }

// RZ appends a Z-axis rotation by angle radians on qubit q.
func (c *Circuit) RZ(angle float64, q int) { c.add(Gate{Name: "rz", Qubits: []int{q}, Angle: angle}) }

// RXParam appends an X-axis rotation by the named free parameter.
func (c *Circuit) RXParam(param string, q int) { c.add(Gate{Name: "rx", Qubits: []int{q}, Param: param}) }

// RYParam appends a Y-axis rotation by the named free parameter.
func (c *Circuit) RYParam(param string, q int) { c.add(Gate{Name: "ry", Qubits: []int{q}, Param: param}) }

// RZParam appends a Z-axis rotation by the named free parameter.
func (c *Circuit) RZParam(param string, q int) { c.add(Gate{Name: "rz", Qubits: []int{q}, Param: param}) }

// CX appends a controlled-X gate.
func (c *Circuit) CX(control, target int) {
	c.add(Gate{Name: "cx", Qubits: []int{control, target}})
}

// CZ appends a controlled-Z gate.
func (c *Circuit) CZ(a, b int) { c.add(Gate{Name: "cz", Qubits: []int{a, b}}) }

// Measure appends a measurement of qubit q into classical bit clbit.
func (c *Circuit) Measure(q, clbit int) {
	c.add(Gate{Name: "measure", Qubits: []int{q}, Clbits: []int{clbit}})
}

// NumClbits returns the total number of classical bits across registers.
func (c *Circuit) NumClbits() int {
	total := 0
	for _, reg := range c.Cregs {
		total += reg.Size
	}
	return total
}

// AddRegister appends a classical register. Names must be unique within a
// circuit.
func (c *Circuit) AddRegister(reg ClassicalRegister) error {
	if reg.Name == "" {
		return fmt.Errorf("classical register name cannot be empty")
	}
	if reg.Size < 1 {
		return fmt.Errorf("classical register %q must have at least one bit", reg.Name)
	}
	for _, existing := range c.Cregs {
		if existing.Name == reg.Name {
			return fmt.Errorf("classical register name %q already in use", reg.Name)
		}
	}
	c.Cregs = append(c.Cregs, reg)
	return nil
}

// Parameters returns the circuit's free parameter names, deduplicated and
// sorted.
func (c *Circuit) Parameters() []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range c.Gates {
		if g.Param != "" && !seen[g.Param] {
			seen[g.Param] = true
			names = append(names, g.Param)
		}
	}
	sort.Strings(names)
	return names
}

func (g Gate) clone() Gate {
	cp := g
	cp.Qubits = append([]int(nil), g.Qubits...)
	if g.Clbits != nil {
		cp.Clbits = append([]int(nil), g.Clbits...)
	}
	return cp
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	cp := &Circuit{NumQubits: c.NumQubits}
	if len(c.Gates) > 0 {
		cp.Gates = make([]Gate, len(c.Gates))
		for i, g := range c.Gates {
			cp.Gates[i] = g.clone()
		}
	}
	if len(c.Cregs) > 0 {
		cp.Cregs = append([]ClassicalRegister(nil), c.Cregs...)
	}
	return cp
}

// Bind returns a copy of the circuit with every free parameter replaced by
// its value from values. Every circuit parameter needs a value and every
// value must match a circuit parameter; anything else is an error.
func (c *Circuit) Bind(values map[string]float64) (*Circuit, error) {
	bound := c.Copy()
	used := make(map[string]bool, len(values))
	for i := range bound.Gates {
		g := &bound.Gates[i]
		if g.Param == "" {
			continue
		}
		v, ok := values[g.Param]
		if !ok {
			return nil, fmt.Errorf("no value bound for parameter %q", g.Param)
		}
		used[g.Param] = true
		g.Angle = v
		g.Param = ""
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !used[name] {
			return nil, fmt.Errorf("value bound for unknown parameter %q", name)
		}
	}
	return bound, nil
}

// Compose appends other's classical registers and gates onto c in place.
// other's qubits map one-to-one onto c's lowest qubits; its classical bits
// shift past c's existing registers. A register name already present in c is
// a conflict and leaves c unchanged.
func (c *Circuit) Compose(other *Circuit) error {
	if other.NumQubits > c.NumQubits {
		return fmt.Errorf("cannot compose a %d-qubit circuit onto a %d-qubit circuit", other.NumQubits, c.NumQubits)
	}
	for _, reg := range other.Cregs {
		for _, existing := range c.Cregs {
			if reg.Name == existing.Name {
				return fmt.Errorf("classical register %q conflicts with a register of the target circuit", reg.Name)
			}
		}
	}
	offset := c.NumClbits()
	c.Cregs = append(c.Cregs, other.Cregs...)
	for _, g := range other.Gates {
		cp := g.clone()
		for i, b := range cp.Clbits {
			cp.Clbits[i] = b + offset
		}
		c.Gates = append(c.Gates, cp)
	}
	return nil
}
