package analytical

import (
	"context"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

const producer = "analytical-activity"

// EventEmitter publishes analytical stage events through the base activity
// infrastructure. Emission is best-effort.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates a new EventEmitter with base activity infrastructure.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitCandidateScreened emits one CandidateScreened event for a report.
func (e *EventEmitter) EmitCandidateScreened(
	ctx context.Context,
	c domain.Candidate,
	rep domain.AnalyticalReport,
	wfCtx activity.WorkflowContext,
) {
	key := domain.GenerateIdempotencyKey(wfCtx.WorkflowID, wfCtx.RunID, "screened", c.ID)
	env, err := domain.NewEvent(
		domain.EventTypeCandidateScreened,
		producer,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		key,
		time.Now(),
		domain.CandidateScreenedPayload{
			CandidateID:  c.ID,
			Domain:       c.Domain,
			Passed:       rep.Passed,
			Violations:   rep.Violations,
			WarningCount: len(rep.Warnings),
		},
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create CandidateScreened event",
			"candidate_id", c.ID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, env, "CandidateScreened")
}

// EmitBatch emits one CandidateScreened event per candidate/report pair.
func (e *EventEmitter) EmitBatch(
	ctx context.Context,
	candidates []domain.Candidate,
	reports []domain.AnalyticalReport,
	wfCtx activity.WorkflowContext,
) {
	for i := range reports {
		e.EmitCandidateScreened(ctx, candidates[i], reports[i], wfCtx)
	}
}
