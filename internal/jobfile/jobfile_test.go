package jobfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidJob(t *testing.T) {
	path := writeJobFile(t, `version: "1.0"
precision: 0.1
pubs:
  - circuit:
      qubits: 2
      gates:
        - {name: h, qubits: [0]}
        - {name: cx, qubits: [0, 1]}
        - {name: rz, qubits: [1], param: theta}
    observables:
      - ZZ: 1.0
        XX: 0.5
      - IZ: -2.0
    parameters:
      - theta: 0.25
      - theta: 0.5
    precision: 0.05
`)

	job, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", job.Version)
	require.NotNil(t, job.Precision)
	assert.Equal(t, 0.1, *job.Precision)

	require.Len(t, job.Pubs, 1)
	pub := job.Pubs[0]
	assert.Equal(t, 2, pub.Circuit.Qubits)
	require.Len(t, pub.Circuit.Gates, 3)
	assert.Equal(t, "cx", pub.Circuit.Gates[1].Name)
	assert.Equal(t, []int{0, 1}, pub.Circuit.Gates[1].Qubits)
	assert.Equal(t, "theta", pub.Circuit.Gates[2].Param)
	assert.Len(t, pub.Observables, 2)
	assert.Equal(t, 0.5, pub.Observables[0]["XX"])
	assert.Len(t, pub.Parameters, 2)
	require.NotNil(t, pub.Precision)
	assert.Equal(t, 0.05, *pub.Precision)
}

func TestLoad_FileNotFound(t *testing.T) {
	job, err := Load("/nonexistent/job.yml")
	assert.Error(t, err)
	assert.Nil(t, job)
	assert.Contains(t, err.Error(), "failed to read job file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeJobFile(t, `version: "1.0"
pubs:
  - this is invalid
    yaml syntax
`)

	job, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, job)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	job := &JobFile{Version: "0.9"}

	err := job.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version: 0.9")
}

func TestValidate_NoPubs(t *testing.T) {
	job := &JobFile{Version: "1.0"}

	err := job.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no pubs defined")
}

func TestValidate_ObservableWidthMismatch(t *testing.T) {
	job := &JobFile{
		Version: "1.0",
		Pubs: []PubSpec{{
			Circuit:     CircuitSpec{Qubits: 2},
			Observables: []map[string]float64{{"Z": 1}},
		}},
	}

	err := job.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "acts on 1 qubits, circuit has 2")
}

func TestValidate_BadOperatorLabel(t *testing.T) {
	job := &JobFile{
		Version: "1.0",
		Pubs: []PubSpec{{
			Circuit:     CircuitSpec{Qubits: 1},
			Observables: []map[string]float64{{"Q": 1}},
		}},
	}

	err := job.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pub 0")
}

func TestValidate_MissingObservables(t *testing.T) {
	job := &JobFile{
		Version: "1.0",
		Pubs:    []PubSpec{{Circuit: CircuitSpec{Qubits: 1}}},
	}

	err := job.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one observable is required")
}

func TestGateValidate(t *testing.T) {
	angle := 0.5

	tests := []struct {
		name    string
		gate    GateSpec
		wantErr string
	}{
		{
			name: "valid single-qubit gate",
			gate: GateSpec{Name: "h", Qubits: []int{0}},
		},
		{
			name: "valid bound rotation",
			gate: GateSpec{Name: "rx", Qubits: []int{1}, Angle: &angle},
		},
		{
			name: "valid parameterized rotation",
			gate: GateSpec{Name: "ry", Qubits: []int{0}, Param: "theta"},
		},
		{
			name: "valid two-qubit gate",
			gate: GateSpec{Name: "cx", Qubits: []int{0, 1}},
		},
		{
			name:    "unknown gate",
			gate:    GateSpec{Name: "swap", Qubits: []int{0, 1}},
			wantErr: "unknown gate: swap",
		},
		{
			name:    "explicit measure is rejected",
			gate:    GateSpec{Name: "measure", Qubits: []int{0}},
			wantErr: "added automatically",
		},
		{
			name:    "wrong operand count",
			gate:    GateSpec{Name: "h", Qubits: []int{0, 1}},
			wantErr: "takes 1 qubit(s)",
		},
		{
			name:    "qubit out of range",
			gate:    GateSpec{Name: "x", Qubits: []int{2}},
			wantErr: "out of range",
		},
		{
			name:    "duplicate operands",
			gate:    GateSpec{Name: "cz", Qubits: []int{1, 1}},
			wantErr: "must be distinct",
		},
		{
			name:    "rotation without angle or param",
			gate:    GateSpec{Name: "rz", Qubits: []int{0}},
			wantErr: "exactly one of angle or param",
		},
		{
			name:    "rotation with both angle and param",
			gate:    GateSpec{Name: "rz", Qubits: []int{0}, Angle: &angle, Param: "theta"},
			wantErr: "exactly one of angle or param",
		},
		{
			name:    "angle on a fixed gate",
			gate:    GateSpec{Name: "h", Qubits: []int{0}, Angle: &angle},
			wantErr: "does not take an angle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gate.Validate(2)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEstimatorPubs(t *testing.T) {
	path := writeJobFile(t, `version: "1.0"
pubs:
  - circuit:
      qubits: 2
      gates:
        - {name: h, qubits: [0]}
        - {name: cx, qubits: [0, 1]}
        - {name: rz, qubits: [1], param: theta}
    observables:
      - ZZ: 1.0
      - XX: 0.5
    parameters:
      - theta: 0.25
      - theta: 0.5
      - theta: 0.75
`)
	job, err := Load(path)
	require.NoError(t, err)

	pubs, err := job.EstimatorPubs()
	require.NoError(t, err)
	require.Len(t, pubs, 1)

	pub := pubs[0]
	assert.Equal(t, 2, pub.Circuit.NumQubits)
	require.Len(t, pub.Circuit.Gates, 3)
	assert.Equal(t, "rz", pub.Circuit.Gates[2].Name)
	assert.Equal(t, []string{"theta"}, pub.Circuit.Parameters())

	assert.Equal(t, []int{2}, pub.Observables.Shape())
	assert.Equal(t, complex(0.5, 0), pub.Observables.At(1)["XX"])

	require.NotNil(t, pub.Parameters)
	assert.Equal(t, []int{3}, pub.Parameters.Shape())
	assert.Equal(t, 0.75, pub.Parameters.At(2)["theta"])

	assert.Nil(t, pub.Precision)
}

func TestEstimatorPubs_NoParameters(t *testing.T) {
	path := writeJobFile(t, `version: "1.0"
pubs:
  - circuit:
      qubits: 1
      gates:
        - {name: x, qubits: [0]}
    observables:
      - Z: 1.0
`)
	job, err := Load(path)
	require.NoError(t, err)

	pubs, err := job.EstimatorPubs()
	require.NoError(t, err)
	assert.Nil(t, pubs[0].Parameters)
}

func TestCircuitSpecBuild(t *testing.T) {
	angle := 1.5
	spec := CircuitSpec{
		Qubits: 2,
		Gates: []GateSpec{
			{Name: "h", Qubits: []int{0}},
			{Name: "x", Qubits: []int{1}},
			{Name: "y", Qubits: []int{1}},
			{Name: "z", Qubits: []int{0}},
			{Name: "s", Qubits: []int{0}},
			{Name: "sdg", Qubits: []int{0}},
			{Name: "rx", Qubits: []int{0}, Angle: &angle},
			{Name: "ry", Qubits: []int{1}, Param: "a"},
			{Name: "rz", Qubits: []int{1}, Param: "b"},
			{Name: "cx", Qubits: []int{0, 1}},
			{Name: "cz", Qubits: []int{1, 0}},
		},
	}
	require.NoError(t, spec.Validate())

	c, err := spec.Build()
	require.NoError(t, err)
	require.Len(t, c.Gates, 11)
	assert.Equal(t, 1.5, c.Gates[6].Angle)
	assert.Equal(t, "a", c.Gates[7].Param)
	assert.Equal(t, []int{0, 1}, c.Gates[9].Qubits)
	assert.Equal(t, []string{"a", "b"}, c.Parameters())
}
