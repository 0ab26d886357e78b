package domain

import "fmt"

// MeshSize selects the discretisation resolution of a simulation.
type MeshSize string

// Supported mesh sizes.
const (
	MeshCoarse MeshSize = "coarse"
	MeshMedium MeshSize = "medium"
	MeshFine   MeshSize = "fine"
)

// NodeCount returns the number of mesh nodes for the size, or 0 for unknown sizes.
func (m MeshSize) NodeCount() int {
	switch m {
	case MeshCoarse:
		return 1_000
	case MeshMedium:
		return 10_000
	case MeshFine:
		return 100_000
	default:
		return 0
	}
}

// IsValid reports whether m is a supported mesh size.
func (m MeshSize) IsValid() bool { return m.NodeCount() > 0 }

// ParseMeshSize validates a mesh size name.
func ParseMeshSize(s string) (MeshSize, error) {
	m := MeshSize(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown mesh size %q", ErrInvalidOptions, s)
	}
	return m, nil
}

// SimConfig describes how a candidate is simulated.
type SimConfig struct {
	Solver   string   `json:"solver" yaml:"solver"`
	MeshSize MeshSize `json:"mesh_size" yaml:"mesh_size"`
}

// Well-known metric names reported by simulators.
const (
	MetricMaxStress       = "max_stress"
	MetricMaxTemperature  = "max_temperature"
	MetricMaxDisplacement = "max_displacement"
)

// ComputationalCost records the resources a simulation consumed.
type ComputationalCost struct {
	Nodes      int     `json:"nodes"`
	CPUTimeSec float64 `json:"cpu_time_sec"`
	MemoryMB   float64 `json:"memory_mb"`
}

// NumericalReport is the verdict of the numerical stage for one candidate.
// A non-empty Error means the simulator itself failed; such reports never pass.
type NumericalReport struct {
	CandidateID string             `json:"candidate_id"`
	Passed      bool               `json:"passed"`
	Converged   bool               `json:"converged"`
	Solver      string             `json:"solver,omitempty"`
	MeshSize    MeshSize           `json:"mesh_size,omitempty"`
	NodeCount   int                `json:"node_count"`
	Iterations  int                `json:"iterations"`
	Residual    float64            `json:"residual"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Cost        ComputationalCost  `json:"computational_cost"`
	Cached      bool               `json:"cached,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// FailedNumericalReport builds the report recorded when a simulator returns an error.
func FailedNumericalReport(candidateID string, err error) NumericalReport {
	return NumericalReport{
		CandidateID: candidateID,
		Passed:      false,
		Converged:   false,
		Error:       err.Error(),
	}
}

// CostEstimate is the pre-flight resource estimate for simulating a candidate.
type CostEstimate struct {
	CandidateID       string   `json:"candidate_id"`
	MeshSize          MeshSize `json:"mesh_size"`
	NodeCount         int      `json:"node_count"`
	RelativeCost      float64  `json:"relative_cost"`
	EstimatedCPUHours float64  `json:"estimated_cpu_hours"`
	EstimatedMemoryGB float64  `json:"estimated_memory_gb"`
}
