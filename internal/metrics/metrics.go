// Package metrics exposes Prometheus collectors for pipeline stages.
// Collectors are registered on the default registry at package init.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shf"

// Stage labels.
const (
	StageGenerate   = "generate"
	StageAnalytical = "analytical"
	StageNumerical  = "numerical"
	StageMeta       = "meta"
)

// Outcome labels.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
	OutcomeCached = "cached"
)

var (
	// stageCandidates counts candidates leaving each stage.
	// Labels: stage, outcome (passed, failed)
	stageCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "candidates_total",
		Help:      "Candidates processed per stage by outcome",
	}, []string{"stage", "outcome"})

	// stageDuration measures the wall time of one stage over a batch.
	// Labels: stage
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "duration_seconds",
		Help:      "Stage batch duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"stage"})

	// violations counts analytical violations by type (text before ':').
	// Labels: type
	violations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytical",
		Name:      "violations_total",
		Help:      "Analytical violations by type",
	}, []string{"type"})

	// simulatorCalls counts simulator invocations.
	// Labels: backend, outcome (passed, failed, error, cached)
	simulatorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "numerical",
		Name:      "simulator_calls_total",
		Help:      "Simulator calls by backend and outcome",
	}, []string{"backend", "outcome"})

	// runs counts pipeline runs.
	// Labels: outcome (passed, error)
	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"outcome"})

	// acceptanceRate records the final acceptance rate of each run.
	acceptanceRate = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "acceptance_rate",
		Help:      "Final acceptance rate per run",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
)

// RecordStageOutcome adds passed and failed candidate counts for a stage.
func RecordStageOutcome(stage string, passed, failed int) {
	stageCandidates.WithLabelValues(stage, OutcomePassed).Add(float64(passed))
	stageCandidates.WithLabelValues(stage, OutcomeFailed).Add(float64(failed))
}

// ObserveStageDuration records how long a stage took over its batch.
func ObserveStageDuration(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordViolation counts one analytical violation of the given type.
func RecordViolation(violationType string) {
	violations.WithLabelValues(violationType).Inc()
}

// RecordSimulatorCall counts one simulator call.
func RecordSimulatorCall(backend, outcome string) {
	simulatorCalls.WithLabelValues(backend, outcome).Inc()
}

// RecordRun counts a finished run and, on success, its acceptance rate.
func RecordRun(err error, finalAcceptanceRate float64) {
	if err != nil {
		runs.WithLabelValues(OutcomeError).Inc()
		return
	}
	runs.WithLabelValues(OutcomePassed).Inc()
	acceptanceRate.Observe(finalAcceptanceRate)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
