// Package sim provides a seeded statevector simulator backend. Circuits are
// executed by direct state evolution and measurement outcomes are sampled
// from the final amplitudes, which makes it the reference executor for tests
// and local runs.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"time"

	"github.com/dyluth/qest/pkg/backend"
	"github.com/dyluth/qest/pkg/circuit"
)

// MaxQubits caps circuit width; the dense state grows as 2^n.
const MaxQubits = 24

// Options configures a Simulator.
type Options struct {
	MaxBatchSize int // largest Run submission accepted; 0 = unlimited
}

// Simulator is a statevector sampling backend. It is stateless across Run
// calls and safe for concurrent use.
type Simulator struct {
	maxBatchSize int
}

// New creates a Simulator.
func New(opts Options) *Simulator {
	return &Simulator{maxBatchSize: opts.MaxBatchSize}
}

// Name implements backend.Backend.
func (s *Simulator) Name() string { return "statevector" }

// MaxBatchSize implements backend.Backend.
func (s *Simulator) MaxBatchSize() int { return s.maxBatchSize }

// Run simulates each circuit and samples opts.Shots outcomes from its final
// state. With a seed set, each circuit draws from a stream derived from the
// seed and its batch position, so identical submissions reproduce their
// histograms exactly.
func (s *Simulator) Run(ctx context.Context, circuits []*circuit.Circuit, opts backend.RunOptions) ([]backend.Counts, error) {
	if s.maxBatchSize > 0 && len(circuits) > s.maxBatchSize {
		return nil, fmt.Errorf("batch of %d circuits exceeds the limit of %d", len(circuits), s.maxBatchSize)
	}
	if opts.Shots < 1 {
		return nil, fmt.Errorf("shots must be positive, got %d", opts.Shots)
	}

	results := make([]backend.Counts, len(circuits))
	for i, c := range circuits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := time.Now().UnixNano() + int64(i)
		if opts.HasSeed {
			seed = opts.Seed + int64(i)
		}
		counts, err := runCircuit(c, opts.Shots, seed)
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
		results[i] = counts
	}
	return results, nil
}

type measurement struct {
	qubit, clbit int
}

func runCircuit(c *circuit.Circuit, shots int, seed int64) (backend.Counts, error) {
	if c.NumQubits < 1 {
		return nil, fmt.Errorf("circuit must have at least one qubit")
	}
	if c.NumQubits > MaxQubits {
		return nil, fmt.Errorf("circuit spans %d qubits, simulator limit is %d", c.NumQubits, MaxQubits)
	}
	numClbits := c.NumClbits()
	if numClbits == 0 {
		return nil, fmt.Errorf("circuit measures no classical bits")
	}

	state := make([]complex128, 1<<uint(c.NumQubits))
	state[0] = 1

	// Measurements are deferred to sampling time, so they must be terminal:
	// no gate may follow on a measured qubit.
	var measures []measurement
	measuredQubits := make(map[int]bool)
	usedClbits := make(map[int]bool)

	for _, g := range c.Gates {
		if g.Param != "" {
			return nil, fmt.Errorf("gate %s has unbound parameter %q", g.Name, g.Param)
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= c.NumQubits {
				return nil, fmt.Errorf("gate %s targets qubit %d, circuit has %d", g.Name, q, c.NumQubits)
			}
			if measuredQubits[q] {
				return nil, fmt.Errorf("gate %s touches qubit %d after its measurement", g.Name, q)
			}
		}

		switch g.Name {
		case "measure":
			if len(g.Qubits) != 1 || len(g.Clbits) != 1 {
				return nil, fmt.Errorf("measure must pair one qubit with one classical bit")
			}
			clbit := g.Clbits[0]
			if clbit < 0 || clbit >= numClbits {
				return nil, fmt.Errorf("classical bit %d out of range, circuit has %d", clbit, numClbits)
			}
			if usedClbits[clbit] {
				return nil, fmt.Errorf("classical bit %d written twice", clbit)
			}
			usedClbits[clbit] = true
			measuredQubits[g.Qubits[0]] = true
			measures = append(measures, measurement{g.Qubits[0], clbit})
		case "h":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateH)
		case "x":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateX)
		case "y":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateY)
		case "z":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateZ)
		case "s":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateS)
		case "sdg":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], gateSDG)
		case "rx":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], rotationX(g.Angle))
		case "ry":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], rotationY(g.Angle))
		case "rz":
			if err := oneQubit(g); err != nil {
				return nil, err
			}
			applySingle(state, g.Qubits[0], rotationZ(g.Angle))
		case "cx":
			if err := twoQubit(g); err != nil {
				return nil, err
			}
			applyCX(state, g.Qubits[0], g.Qubits[1])
		case "cz":
			if err := twoQubit(g); err != nil {
				return nil, err
			}
			applyCZ(state, g.Qubits[0], g.Qubits[1])
		default:
			return nil, fmt.Errorf("unsupported gate %q", g.Name)
		}
	}
	if len(measures) == 0 {
		return nil, fmt.Errorf("circuit contains no measurements")
	}

	return sample(state, measures, numClbits, shots, seed), nil
}

func oneQubit(g circuit.Gate) error {
	if len(g.Qubits) != 1 {
		return fmt.Errorf("gate %s takes exactly one qubit", g.Name)
	}
	return nil
}

func twoQubit(g circuit.Gate) error {
	if len(g.Qubits) != 2 {
		return fmt.Errorf("gate %s takes exactly two qubits", g.Name)
	}
	if g.Qubits[0] == g.Qubits[1] {
		return fmt.Errorf("gate %s needs distinct qubits", g.Name)
	}
	return nil
}

// sample draws shots outcomes from the state's probability distribution and
// projects them through the measurement map onto classical bitstrings, with
// the highest classical bit leftmost.
func sample(state []complex128, measures []measurement, numClbits, shots int, seed int64) backend.Counts {
	cumulative := make([]float64, len(state))
	total := 0.0
	for i, amp := range state {
		total += real(amp)*real(amp) + imag(amp)*imag(amp)
		cumulative[i] = total
	}

	rng := rand.New(rand.NewSource(seed))
	counts := make(backend.Counts)
	key := make([]byte, numClbits)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx >= len(state) {
			idx = len(state) - 1
		}
		for i := range key {
			key[i] = '0'
		}
		for _, m := range measures {
			if idx>>uint(m.qubit)&1 == 1 {
				key[numClbits-1-m.clbit] = '1'
			}
		}
		counts[string(key)]++
	}
	return counts
}

func applySingle(state []complex128, q int, u [2][2]complex128) {
	mask := 1 << uint(q)
	for i := range state {
		if i&mask != 0 {
			continue
		}
		a, b := state[i], state[i|mask]
		state[i] = u[0][0]*a + u[0][1]*b
		state[i|mask] = u[1][0]*a + u[1][1]*b
	}
}

func applyCX(state []complex128, control, target int) {
	cm, tm := 1<<uint(control), 1<<uint(target)
	for i := range state {
		if i&cm != 0 && i&tm == 0 {
			state[i], state[i|tm] = state[i|tm], state[i]
		}
	}
}

func applyCZ(state []complex128, a, b int) {
	am, bm := 1<<uint(a), 1<<uint(b)
	for i := range state {
		if i&am != 0 && i&bm != 0 {
			state[i] = -state[i]
		}
	}
}

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	gateH   = [2][2]complex128{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	gateX   = [2][2]complex128{{0, 1}, {1, 0}}
	gateY   = [2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}
	gateZ   = [2][2]complex128{{1, 0}, {0, -1}}
	gateS   = [2][2]complex128{{1, 0}, {0, complex(0, 1)}}
	gateSDG = [2][2]complex128{{1, 0}, {0, complex(0, -1)}}
)

func rotationX(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return [2][2]complex128{{c, s}, {s, c}}
}

func rotationY(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := math.Sin(theta / 2)
	return [2][2]complex128{{c, complex(-s, 0)}, {complex(s, 0), c}}
}

func rotationZ(theta float64) [2][2]complex128 {
	return [2][2]complex128{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}
