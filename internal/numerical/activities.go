package numerical

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

// Activities exposes the numerical stage as Temporal activities.
type Activities struct {
	activity.BaseActivities
	simulator Simulator
	events    *EventEmitter
}

// NewActivities creates numerical activities. A nil simulator uses the mock backend.
func NewActivities(base activity.BaseActivities, sim Simulator) *Activities {
	if sim == nil {
		sim = NewMock()
	}
	return &Activities{
		BaseActivities: base,
		simulator:      sim,
		events:         NewEventEmitter(base),
	}
}

// SimulateCandidates simulates a batch of analytical survivors. Simulator
// failures are reported per candidate; only cancellation fails the activity.
func (a *Activities) SimulateCandidates(
	ctx context.Context,
	input domain.SimulateCandidatesInput,
) (*domain.SimulateCandidatesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("SimulateCandidates", err, "invalid input")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting SimulateCandidates activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"candidates", len(input.Candidates))

	start := time.Now()
	a.RecordHeartbeat(ctx, "simulating", len(input.Candidates))
	reports, stats, err := SimulateBatch(ctx, a.simulator, input.Candidates, input.MaxConcurrency)
	if err != nil {
		return nil, retryable("SimulateCandidates", err, "context cancelled")
	}
	elapsed := time.Since(start)
	stats.NumericalDuration = elapsed
	ObserveBatch(reports, elapsed)

	for _, rep := range reports {
		a.events.EmitCandidateSimulated(ctx, rep, wfCtx)
	}

	summary := Summarize(reports)
	activity.SafeLog(ctx, "SimulateCandidates completed",
		"passed", summary.Passed,
		"converged", summary.Converged,
		"errors", summary.Errors,
		"cache_hits", stats.CacheHits,
		"latency_ms", elapsed.Milliseconds())

	return &domain.SimulateCandidatesOutput{Reports: reports, Stats: stats}, nil
}

// EstimateCosts returns pre-flight cost estimates for a batch.
func (a *Activities) EstimateCosts(ctx context.Context, candidates []domain.Candidate) ([]domain.CostEstimate, error) {
	if err := domain.ValidateBatch(candidates); err != nil {
		return nil, nonRetryable("EstimateCosts", err, "invalid input")
	}
	estimates, total := EstimateBatch(candidates)
	activity.SafeLog(ctx, "EstimateCosts completed",
		"candidates", len(candidates),
		"estimated_cpu_hours", total)
	return estimates, nil
}

// ObserveBatch records stage metrics for a simulated batch.
func ObserveBatch(reports []domain.NumericalReport, elapsed time.Duration) {
	passed := 0
	for _, r := range reports {
		if r.Passed {
			passed++
		}
	}
	metrics.RecordStageOutcome(metrics.StageNumerical, passed, len(reports)-passed)
	metrics.ObserveStageDuration(metrics.StageNumerical, elapsed)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
