package numerical

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// Parameter limits outside of which the mock solver fails.
const (
	mockUpperLimit = 1000.0
	mockLowerLimit = 0.001
)

var simConfigs = map[domain.Domain]domain.SimConfig{
	domain.DomainThermal:    {Solver: "heat_transfer", MeshSize: domain.MeshMedium},
	domain.DomainStructural: {Solver: "static_analysis", MeshSize: domain.MeshFine},
	domain.DomainFluid:      {Solver: "incompressible_flow", MeshSize: domain.MeshMedium},
}

// SimConfigFor returns the solver configuration for a domain. Domains without
// a dedicated configuration use the thermal one.
func SimConfigFor(d domain.Domain) domain.SimConfig {
	if cfg, ok := simConfigs[d]; ok {
		return cfg
	}
	return simConfigs[domain.DomainThermal]
}

// Mock is a deterministic stand-in for an external solver. Results depend
// only on the candidate's content, so identical candidates always produce
// identical reports.
type Mock struct {
	mesh domain.MeshSize
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithMeshSize forces every simulation onto the given mesh.
func WithMeshSize(m domain.MeshSize) MockOption {
	return func(s *Mock) { s.mesh = m }
}

// NewMock creates a mock simulator.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the simulation configuration used for c.
func (m *Mock) Config(c domain.Candidate) domain.SimConfig {
	cfg := SimConfigFor(c.Domain)
	if m.mesh.IsValid() {
		cfg.MeshSize = m.mesh
	}
	return cfg
}

// Simulate runs the mock solver. A parameter above 1000 fails and prevents
// convergence; a parameter below 0.001 fails but still converges.
func (m *Mock) Simulate(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.NumericalReport{}, err
	}

	cfg := m.Config(c)
	nodes := cfg.MeshSize.NodeCount()

	passed, converged := true, true
	for _, v := range c.Parameters {
		if v > mockUpperLimit {
			passed = false
			converged = false
		}
		if v < mockLowerLimit {
			passed = false
		}
	}

	rng := seededRand(c.Fingerprint())
	stress := uniform(rng, 100, 500)
	temp := uniform(rng, 300, 400)
	if !passed {
		stress = uniform(rng, 600, 1000)
		temp = uniform(rng, 500, 800)
	}

	return domain.NumericalReport{
		CandidateID: c.ID,
		Passed:      passed,
		Converged:   converged,
		Solver:      cfg.Solver,
		MeshSize:    cfg.MeshSize,
		NodeCount:   nodes,
		Iterations:  50 + rng.IntN(150),
		Residual:    uniform(rng, 1e-6, 1e-4),
		Metrics: map[string]float64{
			domain.MetricMaxStress:       stress,
			domain.MetricMaxTemperature:  temp,
			domain.MetricMaxDisplacement: uniform(rng, 0.001, 0.01),
		},
		Cost: domain.ComputationalCost{
			Nodes:      nodes,
			CPUTimeSec: float64(nodes) / 1000,
			MemoryMB:   float64(nodes) / 100,
		},
	}, nil
}

func seededRand(fingerprint string) *rand.Rand {
	var seed [16]byte
	if b, err := hex.DecodeString(fingerprint); err == nil {
		copy(seed[:], b)
	}
	src := rand.NewPCG(binary.BigEndian.Uint64(seed[:8]), binary.BigEndian.Uint64(seed[8:]))
	return rand.New(src) // #nosec G404 -- reproducible mock output
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
