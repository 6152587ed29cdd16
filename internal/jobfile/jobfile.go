// Package jobfile loads estimation jobs from YAML. A job file names the
// circuits to run, the operator sums to estimate against them, and the
// parameter values to bind, in the shape the estimator consumes.
package jobfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/qest/pkg/circuit"
	"github.com/dyluth/qest/pkg/estimator"
	"github.com/dyluth/qest/pkg/pauli"
)

// JobFile represents a top-level estimation job description
type JobFile struct {
	Version   string    `yaml:"version"`
	Precision *float64  `yaml:"precision,omitempty"` // Run-level target precision override
	Pubs      []PubSpec `yaml:"pubs"`
}

// PubSpec describes one estimation task: a circuit, the observables to
// estimate, and optional parameter bindings
type PubSpec struct {
	Circuit     CircuitSpec          `yaml:"circuit"`
	Observables []map[string]float64 `yaml:"observables"`          // Pauli label -> real coefficient
	Parameters  []map[string]float64 `yaml:"parameters,omitempty"` // One entry per binding set
	Precision   *float64             `yaml:"precision,omitempty"`  // Pub-level target precision override
}

// CircuitSpec describes a gate-list circuit
type CircuitSpec struct {
	Qubits int        `yaml:"qubits"`
	Gates  []GateSpec `yaml:"gates"`
}

// GateSpec describes one gate. Rotation gates take either a concrete angle
// or a free parameter name; all other gates take neither.
type GateSpec struct {
	Name   string   `yaml:"name"`
	Qubits []int    `yaml:"qubits"`
	Angle  *float64 `yaml:"angle,omitempty"`
	Param  string   `yaml:"param,omitempty"`
}

// gateArity maps supported gate names to their qubit operand count.
var gateArity = map[string]int{
	"h": 1, "x": 1, "y": 1, "z": 1, "s": 1, "sdg": 1,
	"rx": 1, "ry": 1, "rz": 1,
	"cx": 2, "cz": 2,
}

func isRotation(name string) bool {
	return name == "rx" || name == "ry" || name == "rz"
}

// Validate performs strict validation on the job file
func (j *JobFile) Validate() error {
	// Required: version
	if j.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", j.Version)
	}

	// Required: at least one pub
	if len(j.Pubs) == 0 {
		return fmt.Errorf("no pubs defined")
	}

	if j.Precision != nil && *j.Precision <= 0 {
		return fmt.Errorf("precision must be > 0, got %g", *j.Precision)
	}

	for i, pub := range j.Pubs {
		if err := pub.Validate(); err != nil {
			return fmt.Errorf("pub %d: %w", i, err)
		}
	}
	return nil
}

// Validate performs validation on a single pub specification
func (p *PubSpec) Validate() error {
	if err := p.Circuit.Validate(); err != nil {
		return err
	}

	if len(p.Observables) == 0 {
		return fmt.Errorf("at least one observable is required")
	}
	for i, obs := range p.Observables {
		if len(obs) == 0 {
			return fmt.Errorf("observables[%d] is empty", i)
		}
		for label := range obs {
			op, err := pauli.ParseLabel(label)
			if err != nil {
				return fmt.Errorf("observables[%d]: %w", i, err)
			}
			if op.NumQubits != p.Circuit.Qubits {
				return fmt.Errorf("observables[%d]: operator %q acts on %d qubits, circuit has %d",
					i, label, op.NumQubits, p.Circuit.Qubits)
			}
		}
	}

	if p.Precision != nil && *p.Precision <= 0 {
		return fmt.Errorf("precision must be > 0, got %g", *p.Precision)
	}
	return nil
}

// Validate performs validation on a circuit specification
func (c *CircuitSpec) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("circuit.qubits must be >= 1, got %d", c.Qubits)
	}
	for i, gate := range c.Gates {
		if err := gate.Validate(c.Qubits); err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
	}
	return nil
}

// Validate performs validation on a single gate specification
func (g *GateSpec) Validate(numQubits int) error {
	if g.Name == "measure" {
		return fmt.Errorf("measurements are added automatically and cannot appear in a job file")
	}
	arity, ok := gateArity[g.Name]
	if !ok {
		return fmt.Errorf("unknown gate: %s", g.Name)
	}
	if len(g.Qubits) != arity {
		return fmt.Errorf("gate %s takes %d qubit(s), got %d", g.Name, arity, len(g.Qubits))
	}
	for _, q := range g.Qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("gate %s: qubit %d out of range for a %d-qubit circuit", g.Name, q, numQubits)
		}
	}
	if arity == 2 && g.Qubits[0] == g.Qubits[1] {
		return fmt.Errorf("gate %s: qubit operands must be distinct", g.Name)
	}

	if isRotation(g.Name) {
		hasAngle := g.Angle != nil
		hasParam := g.Param != ""
		if hasAngle == hasParam {
			return fmt.Errorf("gate %s requires exactly one of angle or param", g.Name)
		}
	} else {
		if g.Angle != nil {
			return fmt.Errorf("gate %s does not take an angle", g.Name)
		}
		if g.Param != "" {
			return fmt.Errorf("gate %s does not take a param", g.Name)
		}
	}
	return nil
}

// Build constructs the circuit a validated specification describes.
func (c *CircuitSpec) Build() (*circuit.Circuit, error) {
	built := circuit.New(c.Qubits)
	for _, g := range c.Gates {
		switch g.Name {
		case "h":
			built.H(g.Qubits[0])
		case "x":
			built.X(g.Qubits[0])
		case "y":
			built.Y(g.Qubits[0])
		case "z":
			built.Z(g.Qubits[0])
		case "s":
			built.S(g.Qubits[0])
		case "sdg":
			built.SDG(g.Qubits[0])
		case "rx":
			if g.Param != "" {
				built.RXParam(g.Param, g.Qubits[0])
			} else {
				built.RX(*g.Angle, g.Qubits[0])
			}
		case "ry":
			if g.Param != "" {
				built.RYParam(g.Param, g.Qubits[0])
			} else {
				built.RY(*g.Angle, g.Qubits[0])
			}
		case "rz":
			if g.Param != "" {
				built.RZParam(g.Param, g.Qubits[0])
			} else {
				built.RZ(*g.Angle, g.Qubits[0])
			}
		case "cx":
			built.CX(g.Qubits[0], g.Qubits[1])
		case "cz":
			built.CZ(g.Qubits[0], g.Qubits[1])
		default:
			return nil, fmt.Errorf("unknown gate: %s", g.Name)
		}
	}
	return built, nil
}

// EstimatorPubs converts the job file into the pubs the estimator consumes.
// Observables become a length-n array, parameter sets a length-m array; the
// estimator broadcasts the two against each other.
func (j *JobFile) EstimatorPubs() ([]estimator.Pub, error) {
	pubs := make([]estimator.Pub, len(j.Pubs))
	for i, spec := range j.Pubs {
		c, err := spec.Circuit.Build()
		if err != nil {
			return nil, fmt.Errorf("pub %d: %w", i, err)
		}

		sums := make([]pauli.Sum, len(spec.Observables))
		for k, obs := range spec.Observables {
			sum := make(pauli.Sum, len(obs))
			for label, coeff := range obs {
				sum[label] = complex(coeff, 0)
			}
			sums[k] = sum
		}
		obs, err := estimator.NewObservablesArray([]int{len(sums)}, sums)
		if err != nil {
			return nil, fmt.Errorf("pub %d: %w", i, err)
		}

		pub := estimator.Pub{
			Circuit:     c,
			Observables: obs,
			Precision:   spec.Precision,
		}
		if len(spec.Parameters) > 0 {
			params, err := estimator.NewBindingsArray([]int{len(spec.Parameters)}, spec.Parameters)
			if err != nil {
				return nil, fmt.Errorf("pub %d: %w", i, err)
			}
			pub.Parameters = params
		}
		pubs[i] = pub
	}
	return pubs, nil
}

// Load reads and validates a job file from the specified path
func Load(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var job JobFile
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job file: %w", err)
	}

	return &job, nil
}
