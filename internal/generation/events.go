package generation

import (
	"context"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

const producer = "generation-activity"

// EventEmitter publishes generation events. Emission is best-effort.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates a new EventEmitter with base activity infrastructure.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitCandidatesGenerated emits one event for a generated batch.
func (e *EventEmitter) EmitCandidatesGenerated(
	ctx context.Context,
	prompt string,
	out *domain.GenerateCandidatesOutput,
	wfCtx activity.WorkflowContext,
) {
	ids := make([]string, len(out.Candidates))
	for i, c := range out.Candidates {
		ids[i] = c.ID
	}

	key := domain.GenerateIdempotencyKey(wfCtx.WorkflowID, wfCtx.RunID, "generated")
	env, err := domain.NewEvent(
		domain.EventTypeCandidatesGenerated,
		producer,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		key,
		time.Now(),
		domain.CandidatesGeneratedPayload{
			Prompt:       prompt,
			Generator:    out.Generator,
			Count:        len(out.Candidates),
			CandidateIDs: ids,
		},
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create CandidatesGenerated event", "error", err)
		return
	}
	e.base.EmitEventSafe(ctx, env, "CandidatesGenerated")
}
