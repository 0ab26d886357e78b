package numerical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

func cand(id string, d domain.Domain, params map[string]float64) domain.Candidate {
	return domain.Candidate{ID: id, Equation: "Q = h * A * ΔT", Parameters: params, Domain: d}
}

func TestSimConfigFor(t *testing.T) {
	tests := []struct {
		domain domain.Domain
		want   domain.SimConfig
	}{
		{domain.DomainThermal, domain.SimConfig{Solver: "heat_transfer", MeshSize: domain.MeshMedium}},
		{domain.DomainStructural, domain.SimConfig{Solver: "static_analysis", MeshSize: domain.MeshFine}},
		{domain.DomainFluid, domain.SimConfig{Solver: "incompressible_flow", MeshSize: domain.MeshMedium}},
		{domain.DomainGeometric, domain.SimConfig{Solver: "heat_transfer", MeshSize: domain.MeshMedium}},
		{domain.DomainUnknown, domain.SimConfig{Solver: "heat_transfer", MeshSize: domain.MeshMedium}},
	}
	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			assert.Equal(t, tt.want, SimConfigFor(tt.domain))
		})
	}
}

func TestMock_Simulate(t *testing.T) {
	ctx := context.Background()
	sim := NewMock()

	t.Run("moderate parameters pass", func(t *testing.T) {
		rep, err := sim.Simulate(ctx, cand("a", domain.DomainThermal, map[string]float64{"h": 100, "A": 2, "ΔT": 50}))
		require.NoError(t, err)
		assert.True(t, rep.Passed)
		assert.True(t, rep.Converged)
		assert.Equal(t, "a", rep.CandidateID)
		assert.Equal(t, 10_000, rep.NodeCount)
		assert.Equal(t, domain.ComputationalCost{Nodes: 10_000, CPUTimeSec: 10, MemoryMB: 100}, rep.Cost)
		assert.GreaterOrEqual(t, rep.Iterations, 50)
		assert.Less(t, rep.Iterations, 200)
		assert.InDelta(t, 300, rep.Metrics[domain.MetricMaxStress], 200)
		assert.InDelta(t, 350, rep.Metrics[domain.MetricMaxTemperature], 50)
		assert.InDelta(t, 0.0055, rep.Metrics[domain.MetricMaxDisplacement], 0.0045)
		assert.GreaterOrEqual(t, rep.Residual, 1e-6)
		assert.LessOrEqual(t, rep.Residual, 1e-4)
	})

	t.Run("extreme parameter fails without convergence", func(t *testing.T) {
		rep, err := sim.Simulate(ctx, cand("b", domain.DomainThermal, map[string]float64{"h": 5000}))
		require.NoError(t, err)
		assert.False(t, rep.Passed)
		assert.False(t, rep.Converged)
		assert.InDelta(t, 800, rep.Metrics[domain.MetricMaxStress], 200)
		assert.InDelta(t, 650, rep.Metrics[domain.MetricMaxTemperature], 150)
	})

	t.Run("tiny parameter fails but converges", func(t *testing.T) {
		rep, err := sim.Simulate(ctx, cand("c", domain.DomainThermal, map[string]float64{"h": 0.0001}))
		require.NoError(t, err)
		assert.False(t, rep.Passed)
		assert.True(t, rep.Converged)
	})

	t.Run("structural uses fine mesh", func(t *testing.T) {
		rep, err := sim.Simulate(ctx, cand("d", domain.DomainStructural, map[string]float64{"F": 10}))
		require.NoError(t, err)
		assert.Equal(t, "static_analysis", rep.Solver)
		assert.Equal(t, domain.MeshFine, rep.MeshSize)
		assert.Equal(t, 100_000, rep.NodeCount)
		assert.InDelta(t, 100, rep.Cost.CPUTimeSec, 1e-9)
	})

	t.Run("mesh override", func(t *testing.T) {
		rep, err := NewMock(WithMeshSize(domain.MeshCoarse)).Simulate(ctx, cand("e", domain.DomainStructural, map[string]float64{"F": 10}))
		require.NoError(t, err)
		assert.Equal(t, 1_000, rep.NodeCount)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := sim.Simulate(cctx, cand("f", domain.DomainThermal, nil))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMock_DeterministicByContent(t *testing.T) {
	sim := NewMock()
	params := map[string]float64{"k": 3, "L": 0.2}

	first, err := sim.Simulate(context.Background(), cand("one", domain.DomainFluid, params))
	require.NoError(t, err)
	second, err := sim.Simulate(context.Background(), cand("two", domain.DomainFluid, params))
	require.NoError(t, err)

	second.CandidateID = first.CandidateID
	assert.Equal(t, first, second)
}

func TestPassThrough(t *testing.T) {
	rep, err := PassThrough{}.Simulate(context.Background(), cand("x", domain.DomainThermal, map[string]float64{"h": 1e9}))
	require.NoError(t, err)
	assert.True(t, rep.Passed)
	assert.True(t, rep.Converged)
	assert.Equal(t, "x", rep.CandidateID)
}

func TestNewBackend(t *testing.T) {
	sim, err := NewBackend("")
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, sim)

	sim, err = NewBackend("PassThrough")
	require.NoError(t, err)
	assert.IsType(t, PassThrough{}, sim)

	_, err = NewBackend("openfoam")
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.False(t, be.Retryable)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestEstimateCost(t *testing.T) {
	c := cand("a", domain.DomainThermal, nil)

	medium := EstimateCost(c, domain.SimConfig{MeshSize: domain.MeshMedium})
	assert.Equal(t, 10_000, medium.NodeCount)
	assert.InDelta(t, 1.0, medium.RelativeCost, 1e-12)
	assert.InDelta(t, 0.5, medium.EstimatedCPUHours, 1e-12)
	assert.InDelta(t, 1.0, medium.EstimatedMemoryGB, 1e-12)

	fine := EstimateCost(c, domain.SimConfig{MeshSize: domain.MeshFine})
	assert.InDelta(t, 31.6227766, fine.RelativeCost, 1e-6)
	assert.InDelta(t, 15.8113883, fine.EstimatedCPUHours, 1e-6)
	assert.InDelta(t, 10.0, fine.EstimatedMemoryGB, 1e-12)

	unset := EstimateCost(c, domain.SimConfig{})
	assert.Equal(t, domain.MeshMedium, unset.MeshSize)

	coarse := EstimateCost(c, domain.SimConfig{MeshSize: domain.MeshCoarse})
	assert.Less(t, coarse.EstimatedCPUHours, medium.EstimatedCPUHours)
	assert.Less(t, medium.EstimatedCPUHours, fine.EstimatedCPUHours)
}

func TestEstimateBatch(t *testing.T) {
	estimates, total := EstimateBatch([]domain.Candidate{
		cand("a", domain.DomainThermal, nil),
		cand("b", domain.DomainStructural, nil),
	})
	require.Len(t, estimates, 2)
	assert.Equal(t, "b", estimates[1].CandidateID)
	assert.Equal(t, domain.MeshFine, estimates[1].MeshSize)
	assert.InDelta(t, 0.5+15.8113883, total, 1e-6)
}
