package domain

import (
	"fmt"
	"time"
)

// RunStats holds the counters of one pipeline run.
// It is created per run and returned with the results; nothing is shared across runs.
type RunStats struct {
	Analyses           int           `json:"analyses"`
	Simulations        int           `json:"simulations"`
	SimulationErrors   int           `json:"simulation_errors"`
	CacheHits          int           `json:"cache_hits"`
	MetaAnalyses       int           `json:"meta_analyses"`
	GenerateDuration   time.Duration `json:"generate_duration_ns"`
	AnalyticalDuration time.Duration `json:"analytical_duration_ns"`
	NumericalDuration  time.Duration `json:"numerical_duration_ns"`
	MetaDuration       time.Duration `json:"meta_duration_ns"`
	EstimatedCPUHours  float64       `json:"estimated_cpu_hours"`
}

// Merge adds the counters of other into s.
func (s *RunStats) Merge(other RunStats) {
	s.Analyses += other.Analyses
	s.Simulations += other.Simulations
	s.SimulationErrors += other.SimulationErrors
	s.CacheHits += other.CacheHits
	s.MetaAnalyses += other.MetaAnalyses
	s.GenerateDuration += other.GenerateDuration
	s.AnalyticalDuration += other.AnalyticalDuration
	s.NumericalDuration += other.NumericalDuration
	s.MetaDuration += other.MetaDuration
	s.EstimatedCPUHours += other.EstimatedCPUHours
}

// PipelineReport is the aggregate output of a pipeline run.
type PipelineReport struct {
	RunID                string             `json:"run_id,omitempty"`
	TotalGenerated       int                `json:"total_generated"`
	PassedAnalytical     int                `json:"passed_analytical"`
	PassedNumerical      int                `json:"passed_numerical"`
	PassedMeta           int                `json:"passed_meta"`
	FinalPassed          int                `json:"final_passed"`
	AnalyticalFilterRate float64            `json:"analytical_filter_rate"`
	FinalAcceptanceRate  float64            `json:"final_acceptance_rate"`
	StatusCounts         map[string]int     `json:"status_counts"`
	Records              []ValidationRecord `json:"records"`
	Stats                RunStats           `json:"stats"`
}

// GenerateReport aggregates the records of a run. Rates are 0 for an empty batch.
// It fails only when a record carries a status outside the Status enum.
func GenerateReport(records []ValidationRecord, stats RunStats) (PipelineReport, error) {
	rep := PipelineReport{
		TotalGenerated: len(records),
		StatusCounts:   make(map[string]int),
		Records:        records,
		Stats:          stats,
	}

	for i := range records {
		r := &records[i]
		if r.AnalyticalPassed {
			rep.PassedAnalytical++
		}
		if r.NumericalPassed != nil && *r.NumericalPassed {
			rep.PassedNumerical++
		}
		if r.MetaPassed != nil && *r.MetaPassed {
			rep.PassedMeta++
		}

		switch r.FinalStatus {
		case StatusPassed, StatusPassedAll:
			rep.FinalPassed++
		case StatusPending, StatusRejectedAnalytical, StatusRejectedNumerical, StatusRejectedMeta:
		default:
			return PipelineReport{}, fmt.Errorf("%w: record %s has status %d",
				ErrUnknownStatus, r.Candidate.ID, uint8(r.FinalStatus))
		}
		rep.StatusCounts[r.FinalStatus.String()]++
	}

	if total := float64(rep.TotalGenerated); total > 0 {
		rep.AnalyticalFilterRate = 1 - float64(rep.PassedAnalytical)/total
		rep.FinalAcceptanceRate = float64(rep.FinalPassed) / total
	}
	return rep, nil
}
