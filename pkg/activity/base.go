// Package activity provides the infrastructure shared by the stage activity
// packages: workflow context extraction, logging that works with or without
// a Temporal activity context, heartbeats and best-effort event emission.
//
// Every helper checks activity.IsActivity first, so the same stage code runs
// unchanged inside a Temporal worker and inside the in-process pipeline.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// LocalWorkflowID is reported as the workflow ID when stage code runs outside
// a Temporal activity, for example from the in-process pipeline or tests.
const LocalWorkflowID = "local"

// Event emission retry settings.
const (
	emitAttempts   = 2
	emitRetryDelay = 200 * time.Millisecond
)

// WorkflowContext identifies the execution that emitted an event or log line.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
}

// BaseActivities is embedded by every stage's Activities type.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates a BaseActivities publishing to sink.
// A nil sink disables event emission.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext returns the execution identifiers of the running
// activity. Outside an activity it returns LocalWorkflowID and a fresh
// local run ID.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	if !activity.IsActivity(ctx) {
		return WorkflowContext{
			WorkflowID: LocalWorkflowID,
			RunID:      "local-" + uuid.NewString()[:8],
			ActivityID: "local-activity",
		}
	}
	info := activity.GetInfo(ctx)
	return WorkflowContext{
		WorkflowID: info.WorkflowExecution.ID,
		RunID:      info.WorkflowExecution.RunID,
		ActivityID: info.ActivityID,
	}
}

// EmitEventSafe appends envelope to the sink, retrying once after a short
// delay. Failures are logged and never returned.
func (b *BaseActivities) EmitEventSafe(ctx context.Context, envelope events.Envelope, description string) {
	if b.eventSink == nil {
		return
	}

	var lastErr error
	for attempt := range emitAttempts {
		if attempt > 0 {
			timer := time.NewTimer(emitRetryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				SafeLogError(ctx, fmt.Sprintf("Event emission cancelled: %s", description),
					"event_type", envelope.Type)
				return
			}
		}

		lastErr = b.eventSink.Append(ctx, envelope)
		if lastErr == nil {
			SafeLog(ctx, fmt.Sprintf("Event emitted: %s", description),
				"event_type", envelope.Type,
				"idempotency_key", envelope.IdempotencyKey)
			return
		}
	}

	SafeLogError(ctx, fmt.Sprintf("Failed to emit %s after %d attempts", description, emitAttempts),
		"event_type", envelope.Type,
		"error", lastErr)
}

// RecordHeartbeat records a heartbeat for the running activity.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// SafeLog logs at INFO through the activity logger, or through slog.Default
// outside an activity.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	if activity.IsActivity(ctx) {
		activity.GetLogger(ctx).Info(msg, keyvals...)
		return
	}
	slog.Default().InfoContext(ctx, msg, keyvals...)
}

// SafeLogError is SafeLog at ERROR level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	if activity.IsActivity(ctx) {
		activity.GetLogger(ctx).Error(msg, keyvals...)
		return
	}
	slog.Default().ErrorContext(ctx, msg, keyvals...)
}

// RecordHeartbeat is a no-op outside an activity.
func RecordHeartbeat(ctx context.Context, details ...any) {
	if !activity.IsActivity(ctx) {
		return
	}
	activity.RecordHeartbeat(ctx, details...)
}
