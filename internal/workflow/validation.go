package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/oversight"
)

// QueryStage returns the stage the workflow is currently in.
const QueryStage = "stage"

// Stage names reported by the QueryStage handler.
const (
	StageGenerate   = "generate"
	StageAnalytical = "analytical"
	StageNumerical  = "numerical"
	StageMeta       = "meta"
	StageDone       = "done"
)

// Method values on nil receivers resolve activity names without needing
// live dependencies inside the workflow.
var (
	generationActs *generation.Activities
	analyticalActs *analytical.Activities
	numericalActs  *numerical.Activities
	oversightActs  *oversight.Activities
)

// ValidationWorkflow runs one validation pipeline and returns its report.
// Candidate failures end up as rejected records; the workflow itself fails
// only on an invalid request, a failed activity or a report batch that does
// not match its input.
func ValidationWorkflow(
	ctx workflow.Context,
	req domain.PipelineRequest,
) (*domain.PipelineReport, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "validation.v", workflow.DefaultVersion, currentVersion)

	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid pipeline request",
			"Validation",
			err,
		)
	}

	stage := StageGenerate
	if err := workflow.SetQueryHandler(ctx, QueryStage, func() (string, error) {
		return stage, nil
	}); err != nil {
		return nil, err
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions())
	logger := workflow.GetLogger(ctx)
	opts := req.Options

	runID := req.RunID
	if runID == "" {
		runID = workflow.GetInfo(ctx).WorkflowExecution.RunID
	}

	var stats domain.RunStats
	candidates := req.Candidates
	if req.NeedsGeneration() {
		start := workflow.Now(ctx)
		var out domain.GenerateCandidatesOutput
		err := workflow.ExecuteActivity(ctx, generationActs.GenerateCandidates, domain.GenerateCandidatesInput{
			Prompt:      req.Prompt,
			Count:       req.EffectiveCount(),
			Constraints: req.Constraints,
		}).Get(ctx, &out)
		if err != nil {
			return nil, err
		}
		stats.GenerateDuration = workflow.Now(ctx).Sub(start)
		candidates = out.Candidates
	}
	records := domain.NewValidationRecords(candidates)
	logger.Info("Validation started", "run_id", runID, "candidates", len(records))

	stage = StageAnalytical
	var screened domain.ValidateCandidatesOutput
	err := workflow.ExecuteActivity(ctx, analyticalActs.ValidateCandidates, domain.ValidateCandidatesInput{
		Candidates:     candidates,
		MaxConcurrency: opts.MaxConcurrency,
	}).Get(ctx, &screened)
	if err != nil {
		return nil, err
	}
	if err := domain.ApplyAnalyticalReports(records, screened.Reports); err != nil {
		return nil, batchError(err)
	}
	stats.Merge(screened.Stats)

	if opts.EnableNumerical {
		stage = StageNumerical
		idx, pending := domain.PendingNumerical(records)
		if len(pending) > 0 {
			var simulated domain.SimulateCandidatesOutput
			err := workflow.ExecuteActivity(ctx, numericalActs.SimulateCandidates, domain.SimulateCandidatesInput{
				Candidates:     pending,
				MaxConcurrency: opts.MaxConcurrency,
			}).Get(ctx, &simulated)
			if err != nil {
				return nil, err
			}
			if err := domain.ApplyNumericalReports(records, idx, simulated.Reports); err != nil {
				return nil, batchError(err)
			}
			stats.Merge(simulated.Stats)
		}
	}
	domain.FinalizeAll(records)

	if opts.EnableMeta {
		stage = StageMeta
		var analysed domain.AnalyzeBatchOutput
		err := workflow.ExecuteActivity(ctx, oversightActs.AnalyzeBatch, domain.AnalyzeBatchInput{
			Records:              records,
			ConsistencyThreshold: opts.ConsistencyThreshold,
		}).Get(ctx, &analysed)
		if err != nil {
			return nil, err
		}
		if err := domain.ApplyMetaReports(records, analysed.Reports, opts.MetaCanOverridePriorRejection); err != nil {
			return nil, batchError(err)
		}
		stats.Merge(analysed.Stats)
	}

	rep, err := domain.GenerateReport(records, stats)
	if err != nil {
		return nil, batchError(err)
	}
	rep.RunID = runID
	stage = StageDone

	logger.Info("Validation completed",
		"run_id", runID,
		"final_passed", rep.FinalPassed,
		"acceptance_rate", rep.FinalAcceptanceRate)
	return &rep, nil
}

func activityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
}

func batchError(err error) error {
	return temporal.NewNonRetryableApplicationError("stage reports do not match batch", "BatchMismatch", err)
}
