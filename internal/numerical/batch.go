package numerical

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// SimulateBatch simulates candidates with at most maxConcurrency calls in
// flight. Reports are returned in input order. A simulator error is recorded
// as a failed report for that candidate; only context cancellation aborts
// the batch.
func SimulateBatch(
	ctx context.Context,
	sim Simulator,
	candidates []domain.Candidate,
	maxConcurrency int,
) ([]domain.NumericalReport, domain.RunStats, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = domain.DefaultMaxConcurrency
	}

	reports := make([]domain.NumericalReport, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := sim.Simulate(gctx, candidates[i])
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				rep = domain.FailedNumericalReport(candidates[i].ID, err)
			}
			rep.CandidateID = candidates[i].ID
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.RunStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.RunStats{}, err
	}

	_, cpuHours := EstimateBatch(candidates)
	stats := domain.RunStats{
		Simulations:       len(reports),
		EstimatedCPUHours: cpuHours,
	}
	for _, r := range reports {
		if r.Error != "" {
			stats.SimulationErrors++
		}
		if r.Cached {
			stats.CacheHits++
		}
	}
	return reports, stats, nil
}

// Summary aggregates numerical reports.
type Summary struct {
	Total           int     `json:"total_simulations"`
	Passed          int     `json:"passed"`
	Converged       int     `json:"converged"`
	Errors          int     `json:"errors"`
	PassRate        float64 `json:"pass_rate"`
	ConvergenceRate float64 `json:"convergence_rate"`
	TotalCPUTimeSec float64 `json:"total_cpu_time_sec"`
	TotalNodes      int     `json:"total_nodes"`
	AvgCPUTimeSec   float64 `json:"avg_cpu_time_sec"`
}

// Summarize aggregates reports. Rates and averages are 0 for no reports.
func Summarize(reports []domain.NumericalReport) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		if r.Passed {
			s.Passed++
		}
		if r.Converged {
			s.Converged++
		}
		if r.Error != "" {
			s.Errors++
		}
		s.TotalCPUTimeSec += r.Cost.CPUTimeSec
		s.TotalNodes += r.NodeCount
	}
	if s.Total > 0 {
		n := float64(s.Total)
		s.PassRate = float64(s.Passed) / n
		s.ConvergenceRate = float64(s.Converged) / n
		s.AvgCPUTimeSec = s.TotalCPUTimeSec / n
	}
	return s
}
