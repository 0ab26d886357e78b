package numerical

import (
	"context"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

const producer = "numerical-activity"

// EventEmitter publishes CandidateSimulated events. Emission is best-effort.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates a new EventEmitter with base activity infrastructure.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitCandidateSimulated emits one CandidateSimulated event for a report.
func (e *EventEmitter) EmitCandidateSimulated(
	ctx context.Context,
	rep domain.NumericalReport,
	wfCtx activity.WorkflowContext,
) {
	key := domain.GenerateIdempotencyKey(wfCtx.WorkflowID, wfCtx.RunID, "simulated", rep.CandidateID)
	env, err := domain.NewEvent(
		domain.EventTypeCandidateSimulated,
		producer,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		key,
		time.Now(),
		domain.CandidateSimulatedPayload{
			CandidateID: rep.CandidateID,
			Passed:      rep.Passed,
			Converged:   rep.Converged,
			NodeCount:   rep.NodeCount,
			CPUTimeSec:  rep.Cost.CPUTimeSec,
			Cached:      rep.Cached,
			Error:       rep.Error,
		},
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create CandidateSimulated event",
			"candidate_id", rep.CandidateID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, env, "CandidateSimulated")
}
