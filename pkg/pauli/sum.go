package pauli

import (
	"fmt"
	"sort"
)

// Sum is a weighted sum of Pauli operators: canonical operator label to
// complex coefficient. The map form makes labels unique by construction.
// Zero-magnitude coefficients are kept; dropping terms is the caller's
// decision.
type Sum map[string]complex128

// Labels returns the sum's operator labels in sorted order. Sorted label
// order is the canonical iteration order wherever reproducibility matters.
func (s Sum) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Validate checks that the sum has at least one term and that every label
// parses as an operator spanning exactly numQubits sites.
func (s Sum) Validate(numQubits int) error {
	if len(s) == 0 {
		return fmt.Errorf("operator sum has no terms")
	}
	for _, label := range s.Labels() {
		op, err := ParseLabel(label)
		if err != nil {
			return err
		}
		if op.NumQubits != numQubits {
			return fmt.Errorf("operator %q spans %d sites, expected %d", label, op.NumQubits, numQubits)
		}
	}
	return nil
}
