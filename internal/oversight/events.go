package oversight

import (
	"context"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

const producer = "oversight-activity"

// EventEmitter publishes oversight events. Emission is best-effort.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates a new EventEmitter with base activity infrastructure.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitOversightCompleted emits one event summarising a batch.
func (e *EventEmitter) EmitOversightCompleted(
	ctx context.Context,
	summary Summary,
	wfCtx activity.WorkflowContext,
) {
	key := domain.GenerateIdempotencyKey(wfCtx.WorkflowID, wfCtx.RunID, "oversight")
	env, err := domain.NewEvent(
		domain.EventTypeOversightCompleted,
		producer,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		key,
		time.Now(),
		domain.OversightCompletedPayload{
			Total:           summary.Total,
			Approved:        summary.Approved,
			EnsembleScore:   summary.EnsembleScore,
			MeanConsistency: summary.AvgConsistency,
			MeanQuality:     summary.AvgQuality,
		},
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create OversightCompleted event", "error", err)
		return
	}
	e.base.EmitEventSafe(ctx, env, "OversightCompleted")
}
