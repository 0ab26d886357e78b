package generation

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
)

// Activities handles generation-specific Temporal activities.
type Activities struct {
	activity.BaseActivities
	generator Generator
	events    *EventEmitter
}

// NewActivities creates generation activities. A nil generator uses the
// template generator with seed 0.
func NewActivities(base activity.BaseActivities, gen Generator) *Activities {
	if gen == nil {
		gen = NewTemplates(0)
	}
	return &Activities{
		BaseActivities: base,
		generator:      gen,
		events:         NewEventEmitter(base),
	}
}

// GenerateCandidates produces a candidate batch for a prompt. The batch is
// checked against the candidate contract before it is returned, so a
// malformed generator fails here rather than mid-pipeline.
func (a *Activities) GenerateCandidates(
	ctx context.Context,
	input domain.GenerateCandidatesInput,
) (*domain.GenerateCandidatesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("GenerateCandidates", err, "invalid input")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting GenerateCandidates activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"generator", a.generator.Name(),
		"count", input.Count)

	start := time.Now()
	out, err := Run(ctx, a.generator, input.Prompt, input.Count, input.Constraints)
	if err != nil {
		if IsRetryable(err) || ctx.Err() != nil {
			return nil, retryable("GenerateCandidates", err, "generation failed")
		}
		return nil, nonRetryable("GenerateCandidates", err, "generation failed")
	}
	elapsed := time.Since(start)
	ObserveBatch(len(out.Candidates), elapsed)

	a.events.EmitCandidatesGenerated(ctx, input.Prompt, out, wfCtx)

	activity.SafeLog(ctx, "GenerateCandidates completed",
		"candidates", len(out.Candidates),
		"latency_ms", elapsed.Milliseconds())
	return out, nil
}

// Run generates and validates a batch. Non-zero constraints route through
// GenerateWithConstraints; a batch that no candidate survives is ErrEmptyBatch.
func Run(
	ctx context.Context,
	gen Generator,
	prompt string,
	count int,
	k Constraints,
) (*domain.GenerateCandidatesOutput, error) {
	var candidates []domain.Candidate
	var err error
	if k.IsZero() {
		candidates, err = gen.Generate(ctx, prompt, count)
	} else {
		candidates, err = GenerateWithConstraints(ctx, gen, prompt, k, count)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &Error{Type: ErrorGenerator, Message: gen.Name(), Cause: ErrEmptyBatch}
	}
	out := &domain.GenerateCandidatesOutput{Generator: gen.Name(), Candidates: candidates}
	if err := out.Validate(); err != nil {
		return nil, validationError(err, "generator %s produced invalid candidates", gen.Name())
	}
	return out, nil
}

// ObserveBatch records generation metrics.
func ObserveBatch(generated int, elapsed time.Duration) {
	metrics.RecordStageOutcome(metrics.StageGenerate, generated, 0)
	metrics.ObserveStageDuration(metrics.StageGenerate, elapsed)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
