package numerical

import (
	"math"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// EstimateCost predicts the resources needed to simulate c on cfg's mesh.
// An unset or unknown mesh falls back to medium. Cost grows with the node
// count to the power 1.5, the usual scaling for iterative solvers.
func EstimateCost(c domain.Candidate, cfg domain.SimConfig) domain.CostEstimate {
	mesh := cfg.MeshSize
	if !mesh.IsValid() {
		mesh = domain.MeshMedium
	}
	nodes := mesh.NodeCount()
	relative := math.Pow(float64(nodes)/10_000, 1.5)

	return domain.CostEstimate{
		CandidateID:       c.ID,
		MeshSize:          mesh,
		NodeCount:         nodes,
		RelativeCost:      relative,
		EstimatedCPUHours: relative * 0.5,
		EstimatedMemoryGB: float64(nodes) / 10_000,
	}
}

// EstimateBatch estimates every candidate using its domain's configuration
// and returns the estimates with the total CPU hours.
func EstimateBatch(candidates []domain.Candidate) ([]domain.CostEstimate, float64) {
	out := make([]domain.CostEstimate, len(candidates))
	var total float64
	for i, c := range candidates {
		out[i] = EstimateCost(c, SimConfigFor(c.Domain))
		total += out[i].EstimatedCPUHours
	}
	return out, total
}
