package oversight

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

// Activities exposes meta oversight as a Temporal activity.
type Activities struct {
	activity.BaseActivities
	events *EventEmitter
}

// NewActivities creates oversight activities.
func NewActivities(base activity.BaseActivities) *Activities {
	return &Activities{
		BaseActivities: base,
		events:         NewEventEmitter(base),
	}
}

// AnalyzeBatch runs oversight over the complete record batch.
func (a *Activities) AnalyzeBatch(
	ctx context.Context,
	input domain.AnalyzeBatchInput,
) (*domain.AnalyzeBatchOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError("invalid input", "AnalyzeBatch", err)
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting AnalyzeBatch activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"records", len(input.Records),
		"threshold", input.ConsistencyThreshold)

	start := time.Now()
	reports := NewAnalyzer(input.ConsistencyThreshold).AnalyzeBatch(input.Records)
	elapsed := time.Since(start)
	ObserveBatch(reports, elapsed)

	summary := Summarize(reports)
	a.events.EmitOversightCompleted(ctx, summary, wfCtx)

	activity.SafeLog(ctx, "AnalyzeBatch completed",
		"approved", summary.Approved,
		"avg_consistency", summary.AvgConsistency,
		"latency_ms", elapsed.Milliseconds())

	return &domain.AnalyzeBatchOutput{
		Reports: reports,
		Stats: domain.RunStats{
			MetaAnalyses: len(reports),
			MetaDuration: elapsed,
		},
	}, nil
}

// ObserveBatch records stage metrics for an analysed batch.
func ObserveBatch(reports []domain.MetaReport, elapsed time.Duration) {
	passed := 0
	for _, r := range reports {
		if r.Passed {
			passed++
		}
	}
	metrics.RecordStageOutcome(metrics.StageMeta, passed, len(reports)-passed)
	metrics.ObserveStageDuration(metrics.StageMeta, elapsed)
}
