// Package report renders estimation results for the terminal: a readable
// table for humans and indented JSON for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyluth/qest/pkg/estimator"
)

// FormatTable writes an estimation result as a formatted table to the
// provided writer, one block per pub with one row per broadcast cell.
// Returns the number of estimates formatted.
func FormatTable(w io.Writer, result *estimator.PrimitiveResult) int {
	fmt.Fprintf(w, "Result from backend '%s' (version %d):\n",
		result.Metadata.Backend, result.Metadata.Version)

	total := 0
	for p, pub := range result.PubResults {
		fmt.Fprintf(w, "\nPub %d: %d shots, target precision %g\n",
			p, pub.Metadata.Shots, pub.Metadata.TargetPrecision)

		// Print header row
		fmt.Fprintf(w, "  %-12s %-22s %s\n", "INDEX", "VALUE", "STD ERR")
		fmt.Fprintf(w, "  %-12s %-22s %s\n", "------------", "----------------------", "----------")

		// Print data rows
		for flat := range pub.EVs {
			fmt.Fprintf(w, "  %-12s %-22s %s\n",
				formatIndex(flat, pub.Shape),
				formatValue(pub.EVs[flat]),
				strconv.FormatFloat(pub.Stds[flat], 'f', 6, 64),
			)
			total++
		}
	}

	// Print count
	countMsg := "estimate"
	if total != 1 {
		countMsg = "estimates"
	}
	fmt.Fprintf(w, "\n%d %s\n", total, countMsg)

	return total
}

// jsonResult mirrors PrimitiveResult with expectation values spelled out as
// [real, imaginary] pairs, which JSON has no native encoding for.
type jsonResult struct {
	PubResults []jsonPubResult          `json:"pub_results"`
	Metadata   estimator.ResultMetadata `json:"metadata"`
}

type jsonPubResult struct {
	EVs      [][2]float64          `json:"evs"` // [real, imaginary] pairs, row-major
	Stds     []float64             `json:"stds"`
	Shape    []int                 `json:"shape"`
	Metadata estimator.PubMetadata `json:"metadata"`
}

// FormatJSON writes an estimation result as pretty-printed JSON to the
// provided writer.
func FormatJSON(w io.Writer, result *estimator.PrimitiveResult) error {
	out := jsonResult{
		PubResults: make([]jsonPubResult, len(result.PubResults)),
		Metadata:   result.Metadata,
	}
	for p, pub := range result.PubResults {
		evs := make([][2]float64, len(pub.EVs))
		for i, ev := range pub.EVs {
			evs[i] = [2]float64{real(ev), imag(ev)}
		}
		shape := pub.Shape
		if shape == nil {
			shape = []int{}
		}
		out.PubResults[p] = jsonPubResult{
			EVs:      evs,
			Stds:     pub.Stds,
			Shape:    shape,
			Metadata: pub.Metadata,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// formatIndex renders one broadcast cell's multi-index, "-" for a scalar
// result.
func formatIndex(flat int, shape []int) string {
	if len(shape) == 0 {
		return "-"
	}
	idx := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		idx[i] = flat % shape[i]
		flat /= shape[i]
	}
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatValue renders an expectation value, dropping the imaginary part
// when it is exactly zero.
func formatValue(ev complex128) string {
	if imag(ev) == 0 {
		return strconv.FormatFloat(real(ev), 'f', 6, 64)
	}
	return fmt.Sprintf("%.6f%+.6fi", real(ev), imag(ev))
}
