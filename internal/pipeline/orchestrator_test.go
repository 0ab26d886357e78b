package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

func thermal(id string, k, dt float64) domain.Candidate {
	return domain.Candidate{
		ID:         id,
		Equation:   "Q = k * ΔT",
		Parameters: map[string]float64{"k": k, "ΔT": dt},
		Domain:     domain.DomainThermal,
	}
}

func structural(id string) domain.Candidate {
	return domain.Candidate{
		ID:         id,
		Equation:   "Q = k * ΔT",
		Parameters: map[string]float64{"k": 1, "ΔT": 5},
		Domain:     domain.DomainStructural,
	}
}

// countingSim records the candidates it was asked to simulate.
type countingSim struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (s *countingSim) Simulate(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
	s.mu.Lock()
	s.seen = append(s.seen, c.ID)
	s.mu.Unlock()
	if s.err != nil {
		return domain.NumericalReport{}, s.err
	}
	return numerical.PassThrough{}.Simulate(ctx, c)
}

type fakeRecorder struct {
	saved []string
	err   error
}

func (r *fakeRecorder) SaveRun(_ context.Context, _ domain.PipelineRequest, rep *domain.PipelineReport) error {
	r.saved = append(r.saved, rep.RunID)
	return r.err
}

func options(numericalOn, metaOn bool) domain.PipelineOptions {
	opts := domain.DefaultPipelineOptions()
	opts.EnableNumerical = numericalOn
	opts.EnableMeta = metaOn
	return opts
}

func statuses(rep *domain.PipelineReport) map[string]domain.Status {
	out := make(map[string]domain.Status, len(rep.Records))
	for _, r := range rep.Records {
		out[r.Candidate.ID] = r.FinalStatus
	}
	return out
}

func TestRun_InvalidRequest(t *testing.T) {
	_, err := New().Run(context.Background(), domain.PipelineRequest{Options: domain.DefaultPipelineOptions()})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestRun_AnalyticalFailureSkipsSimulation(t *testing.T) {
	sim := &countingSim{}
	sink := events.NewMemorySink()
	o := New(WithSimulator(sim), WithEventSink(sink))

	rep, err := o.Run(context.Background(), domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("good", 1, 5), thermal("bad", 1, -5)},
		Options:    options(true, false),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"good"}, sim.seen)
	assert.Equal(t, map[string]domain.Status{
		"good": domain.StatusPassedAll,
		"bad":  domain.StatusRejectedAnalytical,
	}, statuses(rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.Stats.Analyses)
	assert.Equal(t, 1, rep.Stats.Simulations)
	assert.InDelta(t, 0.5, rep.FinalAcceptanceRate, 1e-12)

	assert.Len(t, sink.OfType(string(domain.EventTypeCandidateScreened)), 2)
	assert.Len(t, sink.OfType(string(domain.EventTypeCandidateSimulated)), 1)
	assert.Len(t, sink.OfType(string(domain.EventTypeRunCompleted)), 1)
	assert.Empty(t, sink.OfType(string(domain.EventTypeOversightCompleted)))
}

func TestRun_SimulatorErrorRejectsOnlyThatRecord(t *testing.T) {
	sim := &countingSim{err: errors.New("solver diverged")}
	rep, err := New(WithSimulator(sim)).Run(context.Background(), domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(true, false),
	})
	require.NoError(t, err)

	rec := rep.Records[0]
	assert.Equal(t, domain.StatusRejectedNumerical, rec.FinalStatus)
	require.NotNil(t, rec.Numerical)
	assert.Contains(t, rec.Numerical.Error, "solver diverged")
	assert.Equal(t, 1, rep.Stats.SimulationErrors)
}

func TestRun_NumericalDisabled(t *testing.T) {
	sim := &countingSim{}
	rep, err := New(WithSimulator(sim)).Run(context.Background(), domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(false, false),
	})
	require.NoError(t, err)

	assert.Empty(t, sim.seen)
	assert.Equal(t, domain.StatusPassed, rep.Records[0].FinalStatus)
	assert.Nil(t, rep.Records[0].NumericalPassed)
}

func TestRun_MetaOverridePolicy(t *testing.T) {
	// "good" and "bad" disagree on k by 500x, so both fail oversight.
	// "s" is alone in its domain and stays consistent.
	batch := []domain.Candidate{thermal("good", 1, 5), thermal("bad", 500, -5), structural("s")}

	t.Run("override replaces prior rejection", func(t *testing.T) {
		sink := events.NewMemorySink()
		rep, err := New(WithEventSink(sink)).Run(context.Background(), domain.PipelineRequest{
			Candidates: batch,
			Options:    options(false, true),
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]domain.Status{
			"good": domain.StatusRejectedMeta,
			"bad":  domain.StatusRejectedMeta,
			"s":    domain.StatusPassed,
		}, statuses(rep))
		assert.Equal(t, 3, rep.Stats.MetaAnalyses)
		assert.Len(t, sink.OfType(string(domain.EventTypeOversightCompleted)), 1)
	})

	t.Run("without override only accepted records are downgraded", func(t *testing.T) {
		opts := options(false, true)
		opts.MetaCanOverridePriorRejection = false
		rep, err := New().Run(context.Background(), domain.PipelineRequest{Candidates: batch, Options: opts})
		require.NoError(t, err)

		assert.Equal(t, map[string]domain.Status{
			"good": domain.StatusRejectedMeta,
			"bad":  domain.StatusRejectedAnalytical,
			"s":    domain.StatusPassed,
		}, statuses(rep))
	})
}

func TestRun_DoesNotMutateRequestCandidates(t *testing.T) {
	req := domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(false, false),
	}
	rep, err := New().Run(context.Background(), req)
	require.NoError(t, err)

	rep.Records[0].Candidate.Parameters["k"] = 99
	assert.Equal(t, 1.0, req.Candidates[0].Parameters["k"])
}

func TestRun_GeneratesFromPrompt(t *testing.T) {
	sink := events.NewMemorySink()
	rep, err := New(WithEventSink(sink)).Run(context.Background(), domain.PipelineRequest{
		Prompt:  "thermal management for a battery pack",
		Count:   3,
		Options: options(false, true),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.TotalGenerated)
	total := 0
	for _, n := range rep.StatusCounts {
		total += n
	}
	assert.Equal(t, 3, total)
	assert.Zero(t, rep.StatusCounts["PENDING"])
	assert.Len(t, sink.OfType(string(domain.EventTypeCandidatesGenerated)), 1)
}

func TestRun_GenerationConstraints(t *testing.T) {
	rep, err := New().Run(context.Background(), domain.PipelineRequest{
		Prompt:      "thermal management for a battery pack",
		Count:       3,
		Options:     options(false, false),
		Constraints: domain.GenerationConstraints{AllowedDomains: []domain.Domain{domain.DomainRadiation}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, rep.TotalGenerated)
	assert.Equal(t, domain.DomainRadiation, rep.Records[0].Candidate.Domain)
}

func TestRun_KeepsRequestRunID(t *testing.T) {
	const runID = "7f1f5b52-3c1b-4a3c-9a55-0d8f1b0c2a11"
	rec := &fakeRecorder{}
	rep, err := New(WithRecorder(rec)).Run(context.Background(), domain.PipelineRequest{
		RunID:      runID,
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(false, false),
	})
	require.NoError(t, err)
	assert.Equal(t, runID, rep.RunID)
	assert.Equal(t, []string{runID}, rec.saved)
}

func TestRun_RecorderFailureDoesNotFailRun(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	rep, err := New(WithRecorder(rec)).Run(context.Background(), domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(false, false),
	})
	require.NoError(t, err)
	assert.Len(t, rec.saved, 1)
	assert.Equal(t, 1, rep.FinalPassed)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, domain.PipelineRequest{
		Candidates: []domain.Candidate{thermal("a", 1, 5)},
		Options:    options(true, true),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_ConcurrentRunsHaveIndependentStats(t *testing.T) {
	o := New(WithSimulator(numerical.NewMock()))
	var wg sync.WaitGroup
	reports := make([]*domain.PipelineReport, 8)
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep, err := o.Run(context.Background(), domain.PipelineRequest{
				Candidates: []domain.Candidate{thermal("a", 1, 5), thermal("b", 2, 6)},
				Options:    options(true, false),
			})
			assert.NoError(t, err)
			reports[i] = rep
		}()
	}
	wg.Wait()

	for _, rep := range reports {
		require.NotNil(t, rep)
		assert.Equal(t, 2, rep.Stats.Analyses)
		assert.Equal(t, 2, rep.Stats.Simulations)
	}
}
