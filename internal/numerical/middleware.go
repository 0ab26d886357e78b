package numerical

import (
	"context"
	"log/slog"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
)

// WithLogging logs each simulation with its outcome and latency.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "simulator")

	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			start := time.Now()
			rep, err := next.Simulate(ctx, c)
			latency := time.Since(start)
			if err != nil {
				logger.WarnContext(ctx, "simulation failed",
					"candidate_id", c.ID,
					"domain", c.Domain,
					"latency_ms", latency.Milliseconds(),
					"error", err)
				return rep, err
			}
			logger.DebugContext(ctx, "simulation completed",
				"candidate_id", c.ID,
				"solver", rep.Solver,
				"passed", rep.Passed,
				"converged", rep.Converged,
				"cached", rep.Cached,
				"latency_ms", latency.Milliseconds())
			return rep, nil
		})
	}
}

// WithMetrics counts simulator calls by outcome under the backend label.
func WithMetrics(backend string) Middleware {
	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			rep, err := next.Simulate(ctx, c)
			metrics.RecordSimulatorCall(backend, callOutcome(rep, err))
			return rep, err
		})
	}
}

func callOutcome(rep domain.NumericalReport, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case rep.Cached:
		return metrics.OutcomeCached
	case rep.Passed:
		return metrics.OutcomePassed
	default:
		return metrics.OutcomeFailed
	}
}
