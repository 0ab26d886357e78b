// Package pipeline runs the validation stages in process:
// generate, analytical screening, numerical simulation, then batch oversight.
//
// Each candidate moves through its own state machine (see
// domain.ValidationRecord). Analytical and numerical failures are terminal
// for the record; oversight runs over the complete batch once every record
// has settled.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/oversight"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// RunRecorder persists finished runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, req domain.PipelineRequest, rep *domain.PipelineReport) error
}

// Orchestrator owns the record batch of a run and mutates it stage by stage.
// It holds no per-run state, so one Orchestrator can serve concurrent runs.
type Orchestrator struct {
	generator generation.Generator
	validator *analytical.Validator
	simulator numerical.Simulator
	recorder  RunRecorder
	base      activity.BaseActivities
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGenerator sets the generator used for prompt requests.
func WithGenerator(g generation.Generator) Option {
	return func(o *Orchestrator) { o.generator = g }
}

// WithValidator sets the analytical validator.
func WithValidator(v *analytical.Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithSimulator sets the simulator used when numerical validation is enabled.
func WithSimulator(s numerical.Simulator) Option {
	return func(o *Orchestrator) { o.simulator = s }
}

// WithEventSink publishes stage events to sink.
func WithEventSink(sink events.EventSink) Option {
	return func(o *Orchestrator) { o.base = activity.NewBaseActivities(sink) }
}

// WithRecorder persists every successful run.
func WithRecorder(r RunRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator. Unset collaborators default to the template
// generator, a validator with physics constants, the pass-through simulator
// and a no-op event sink.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator: generation.NewTemplates(0),
		validator: analytical.NewValidator(),
		simulator: numerical.PassThrough{},
		base:      activity.NewBaseActivities(nil),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "pipeline")
	return o
}

// Run executes one pipeline run. Candidate problems never fail the run; they
// end up as rejected records. Run fails only on an invalid request, a
// generator failure or context cancellation.
func (o *Orchestrator) Run(ctx context.Context, req domain.PipelineRequest) (*domain.PipelineReport, error) {
	rep, err := o.run(ctx, req)
	rate := 0.0
	if rep != nil {
		rate = rep.FinalAcceptanceRate
	}
	metrics.RecordRun(err, rate)
	return rep, err
}

func (o *Orchestrator) run(ctx context.Context, req domain.PipelineRequest) (*domain.PipelineReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	wfCtx := activity.WorkflowContext{WorkflowID: activity.LocalWorkflowID, RunID: runID}
	opts := req.Options
	logger := o.logger.With("run_id", runID)

	var stats domain.RunStats
	candidates, err := o.candidates(ctx, req, wfCtx, &stats)
	if err != nil {
		return nil, err
	}
	records := domain.NewValidationRecords(candidates)
	logger.InfoContext(ctx, "pipeline run started",
		"candidates", len(records),
		"numerical", opts.EnableNumerical,
		"meta", opts.EnableMeta)

	if err := o.screen(ctx, records, opts, wfCtx, &stats); err != nil {
		return nil, err
	}
	if opts.EnableNumerical {
		if err := o.simulate(ctx, records, opts, wfCtx, &stats); err != nil {
			return nil, err
		}
	}
	domain.FinalizeAll(records)
	if opts.EnableMeta {
		if err := o.oversee(ctx, records, opts, wfCtx, &stats); err != nil {
			return nil, err
		}
	}

	rep, err := domain.GenerateReport(records, stats)
	if err != nil {
		return nil, err
	}
	rep.RunID = runID
	o.emitRunCompleted(ctx, &rep, wfCtx)

	if o.recorder != nil {
		if err := o.recorder.SaveRun(ctx, req, &rep); err != nil {
			logger.ErrorContext(ctx, "failed to persist run", "error", err)
		}
	}
	logger.InfoContext(ctx, "pipeline run completed",
		"total", rep.TotalGenerated,
		"passed_analytical", rep.PassedAnalytical,
		"final_passed", rep.FinalPassed,
		"acceptance_rate", rep.FinalAcceptanceRate)
	return &rep, nil
}

func (o *Orchestrator) candidates(
	ctx context.Context,
	req domain.PipelineRequest,
	wfCtx activity.WorkflowContext,
	stats *domain.RunStats,
) ([]domain.Candidate, error) {
	if !req.NeedsGeneration() {
		out := make([]domain.Candidate, len(req.Candidates))
		for i, c := range req.Candidates {
			out[i] = c.Clone()
		}
		return out, nil
	}

	start := time.Now()
	out, err := generation.Run(ctx, o.generator, req.Prompt, req.EffectiveCount(), req.Constraints)
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}
	stats.GenerateDuration = time.Since(start)
	generation.ObserveBatch(len(out.Candidates), stats.GenerateDuration)
	generation.NewEventEmitter(o.base).EmitCandidatesGenerated(ctx, req.Prompt, out, wfCtx)
	return out.Candidates, nil
}

func (o *Orchestrator) screen(
	ctx context.Context,
	records []domain.ValidationRecord,
	opts domain.PipelineOptions,
	wfCtx activity.WorkflowContext,
	stats *domain.RunStats,
) error {
	candidates := make([]domain.Candidate, len(records))
	for i := range records {
		candidates[i] = records[i].Candidate
	}

	start := time.Now()
	reports, err := o.validator.ValidateBatch(ctx, candidates, opts.MaxConcurrency)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	if err := domain.ApplyAnalyticalReports(records, reports); err != nil {
		return err
	}
	stats.Analyses += len(reports)
	stats.AnalyticalDuration += elapsed
	analytical.ObserveBatch(reports, elapsed)
	analytical.NewEventEmitter(o.base).EmitBatch(ctx, candidates, reports, wfCtx)
	return nil
}

func (o *Orchestrator) simulate(
	ctx context.Context,
	records []domain.ValidationRecord,
	opts domain.PipelineOptions,
	wfCtx activity.WorkflowContext,
	stats *domain.RunStats,
) error {
	idx, pending := domain.PendingNumerical(records)
	if len(pending) == 0 {
		return nil
	}

	start := time.Now()
	reports, batchStats, err := numerical.SimulateBatch(ctx, o.simulator, pending, opts.MaxConcurrency)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	if err := domain.ApplyNumericalReports(records, idx, reports); err != nil {
		return err
	}
	batchStats.NumericalDuration = elapsed
	stats.Merge(batchStats)
	numerical.ObserveBatch(reports, elapsed)

	emitter := numerical.NewEventEmitter(o.base)
	for _, rep := range reports {
		emitter.EmitCandidateSimulated(ctx, rep, wfCtx)
	}
	return nil
}

func (o *Orchestrator) oversee(
	ctx context.Context,
	records []domain.ValidationRecord,
	opts domain.PipelineOptions,
	wfCtx activity.WorkflowContext,
	stats *domain.RunStats,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	reports := oversight.NewAnalyzer(opts.ConsistencyThreshold).AnalyzeBatch(records)
	elapsed := time.Since(start)
	if err := domain.ApplyMetaReports(records, reports, opts.MetaCanOverridePriorRejection); err != nil {
		return err
	}
	stats.MetaAnalyses += len(reports)
	stats.MetaDuration += elapsed
	oversight.ObserveBatch(reports, elapsed)
	oversight.NewEventEmitter(o.base).EmitOversightCompleted(ctx, oversight.Summarize(reports), wfCtx)
	return nil
}

func (o *Orchestrator) emitRunCompleted(ctx context.Context, rep *domain.PipelineReport, wfCtx activity.WorkflowContext) {
	env, err := domain.NewEvent(
		domain.EventTypeRunCompleted,
		"pipeline",
		wfCtx.WorkflowID,
		wfCtx.RunID,
		domain.GenerateIdempotencyKey(wfCtx.WorkflowID, wfCtx.RunID, "completed"),
		time.Now(),
		domain.NewRunCompletedPayload(rep),
	)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to create RunCompleted event", "error", err)
		return
	}
	o.base.EmitEventSafe(ctx, env, "RunCompleted")
}
