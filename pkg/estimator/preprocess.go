package estimator

import (
	"fmt"
	"sort"

	"github.com/dyluth/qest/pkg/circuit"
	"github.com/dyluth/qest/pkg/pauli"
)

// measRegisterPrefix names the synthetic measurement registers composed
// onto bound circuits. Caller circuits must not use the prefix themselves;
// a collision is reported as a name conflict.
const measRegisterPrefix = "__c_"

// variantPayload is the bookkeeping carried alongside one program variant,
// indexed identically to the variant list. It records what the variant
// measures and where its estimates land, so histograms can be decoded
// without inspecting the circuit.
type variantPayload struct {
	original []pauli.Operator // lab-frame operators, in group order
	measured []pauli.Operator // the same operators restricted to the measured sites
	measBits int              // width of the synthetic measurement register
	bindIdx  int              // flat index into the pub's bindings array
}

// preprocessed is one pub prepared for execution: the program variants to
// run plus the index maps that translate broadcast positions back to source
// arrays.
type preprocessed struct {
	variants []*circuit.Circuit
	payloads []variantPayload
	shape    []int
	bindIdx  []int // broadcast flat index -> bindings flat index
	obsIdx   []int // broadcast flat index -> observables flat index
}

// preprocessPub broadcasts the pub's bindings against its observables,
// derives the distinct operator set needed at each binding index, and
// builds one basis-adjusted program variant per qubit-wise commuting group.
// Output order is deterministic: binding indices in first-seen row-major
// order, operator labels sorted before grouping.
func preprocessPub(pub *coercedPub, grouping bool) (*preprocessed, error) {
	size := shapeSize(pub.shape)
	pre := &preprocessed{
		shape:   pub.shape,
		bindIdx: make([]int, size),
		obsIdx:  make([]int, size),
	}

	needed := make(map[int]map[string]bool)
	var seen []int
	for flat := 0; flat < size; flat++ {
		idx := unravel(flat, pub.shape)
		bindFlat := broadcastFlat(idx, pub.params.Shape())
		obsFlat := broadcastFlat(idx, pub.obs.Shape())
		pre.bindIdx[flat] = bindFlat
		pre.obsIdx[flat] = obsFlat

		labels, ok := needed[bindFlat]
		if !ok {
			labels = make(map[string]bool)
			needed[bindFlat] = labels
			seen = append(seen, bindFlat)
		}
		for label := range pub.obs.At(obsFlat) {
			labels[label] = true
		}
	}

	for _, bindFlat := range seen {
		bound, err := pub.circuit.Bind(pub.params.At(bindFlat))
		if err != nil {
			return nil, fmt.Errorf("%w: bindings[%d]: %v", ErrValidation, bindFlat, err)
		}

		labels := make([]string, 0, len(needed[bindFlat]))
		for label := range needed[bindFlat] {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		ops := make([]pauli.Operator, len(labels))
		for i, label := range labels {
			op, err := pauli.ParseLabel(label)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			ops[i] = op
		}

		variants, payloads, err := measurementVariants(bound, ops, bindFlat, grouping)
		if err != nil {
			return nil, err
		}
		pre.variants = append(pre.variants, variants...)
		pre.payloads = append(pre.payloads, payloads...)
	}
	return pre, nil
}

// measurementVariants builds one basis-adjusted copy of bound per
// qubit-wise commuting group of ops, with the group bookkeeping to decode
// its histogram later.
func measurementVariants(bound *circuit.Circuit, ops []pauli.Operator, bindFlat int, grouping bool) ([]*circuit.Circuit, []variantPayload, error) {
	groups := pauli.GroupQubitWise(ops, grouping)

	measCircuits := make([]*circuit.Circuit, len(groups))
	payloads := make([]variantPayload, len(groups))
	for i, group := range groups {
		basis, err := pauli.UnionBasis(group)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrComputation, err)
		}
		sites := basis.MeasuredSites()

		mc, err := measurementCircuit(bound.NumQubits, basis, sites)
		if err != nil {
			return nil, nil, err
		}
		measured := make([]pauli.Operator, len(group))
		for k, op := range group {
			restricted, err := pauli.Restrict(op, sites)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrComputation, err)
			}
			measured[k] = restricted
		}

		measCircuits[i] = mc
		payloads[i] = variantPayload{
			original: group,
			measured: measured,
			measBits: len(sites),
			bindIdx:  bindFlat,
		}
	}

	measCircuits = circuit.SimplifySingleQubit(measCircuits)

	variants := make([]*circuit.Circuit, len(measCircuits))
	for i, mc := range measCircuits {
		v := bound.Copy()
		if err := v.Compose(mc); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrNameConflict, err)
		}
		variants[i] = v
	}
	return variants, payloads, nil
}

// measurementCircuit builds the basis change plus measurements for one
// group basis. Per measured site: an X component rotates through h, a Y
// component through sdg then h, Z and identity need no rotation. Classical
// bit k stores site sites[k]; the register is named after the basis label
// so multi-group variants of one binding stay distinguishable.
func measurementCircuit(numQubits int, basis pauli.Operator, sites []int) (*circuit.Circuit, error) {
	mc := circuit.New(numQubits)
	reg := circuit.ClassicalRegister{Name: measRegisterPrefix + basis.Label(), Size: len(sites)}
	if err := mc.AddRegister(reg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for k, q := range sites {
		if basis.X>>uint(q)&1 == 1 {
			if basis.Z>>uint(q)&1 == 1 {
				mc.SDG(q)
			}
			mc.H(q)
		}
		mc.Measure(q, k)
	}
	return mc, nil
}
