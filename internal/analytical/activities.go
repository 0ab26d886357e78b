package analytical

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

// Activities exposes the analytical stage as Temporal activities.
type Activities struct {
	activity.BaseActivities
	validator *Validator
	events    *EventEmitter
}

// NewActivities creates analytical activities. A nil validator uses NewValidator().
func NewActivities(base activity.BaseActivities, validator *Validator) *Activities {
	if validator == nil {
		validator = NewValidator()
	}
	return &Activities{
		BaseActivities: base,
		validator:      validator,
		events:         NewEventEmitter(base),
	}
}

// ValidateCandidates screens a batch of candidates. Reports are returned in
// input order. Invalid input is non-retryable; cancellation is retryable.
func (a *Activities) ValidateCandidates(
	ctx context.Context,
	input domain.ValidateCandidatesInput,
) (*domain.ValidateCandidatesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("ValidateCandidates", err, "invalid input")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting ValidateCandidates activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"candidates", len(input.Candidates))

	start := time.Now()
	a.RecordHeartbeat(ctx, "validating", len(input.Candidates))
	reports, err := a.validator.ValidateBatch(ctx, input.Candidates, input.MaxConcurrency)
	if err != nil {
		return nil, retryable("ValidateCandidates", err, "context cancelled")
	}
	elapsed := time.Since(start)
	ObserveBatch(reports, elapsed)

	a.events.EmitBatch(ctx, input.Candidates, reports, wfCtx)

	summary := Summarize(reports)
	activity.SafeLog(ctx, "ValidateCandidates completed",
		"passed", summary.Passed,
		"failed", summary.Failed,
		"latency_ms", elapsed.Milliseconds())

	return &domain.ValidateCandidatesOutput{
		Reports: reports,
		Stats: domain.RunStats{
			Analyses:           len(reports),
			AnalyticalDuration: elapsed,
		},
	}, nil
}

// ObserveBatch records stage metrics for a validated batch.
func ObserveBatch(reports []domain.AnalyticalReport, elapsed time.Duration) {
	passed := 0
	for _, r := range reports {
		if r.Passed {
			passed++
		}
		for _, v := range r.Violations {
			metrics.RecordViolation(domain.ViolationType(v))
		}
	}
	metrics.RecordStageOutcome(metrics.StageAnalytical, passed, len(reports)-passed)
	metrics.ObserveStageDuration(metrics.StageAnalytical, elapsed)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
