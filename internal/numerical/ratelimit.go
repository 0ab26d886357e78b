package numerical

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// RateLimitConfig controls WithRateLimit.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Validate checks the limiter settings.
func (c RateLimitConfig) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests per second must be positive", ErrInvalidConfig)
	}
	if c.Burst < 1 {
		return fmt.Errorf("%w: burst must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// WithRateLimit throttles calls with a token bucket shared by every caller
// of the returned middleware. Calls block until a token is available or
// the context ends.
func WithRateLimit(cfg RateLimitConfig) (Middleware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return domain.NumericalReport{}, ctxErr
				}
				return domain.NumericalReport{}, &BackendError{
					Backend:   "ratelimit",
					Message:   "rate limit wait failed",
					Retryable: true,
					Cause:     err,
				}
			}
			return next.Simulate(ctx, c)
		})
	}, nil
}
