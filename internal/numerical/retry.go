package numerical

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	Multiplier      float64       `yaml:"multiplier"`
	UseJitter       bool          `yaml:"use_jitter"`
}

// DefaultRetryConfig returns three attempts with jittered exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		UseJitter:       true,
	}
}

// Validate rejects configurations that could loop forever or never wait.
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	case c.InitialInterval < 0:
		return fmt.Errorf("%w: initial interval must not be negative", ErrInvalidConfig)
	case c.MaxInterval < c.InitialInterval:
		return fmt.Errorf("%w: max interval %s below initial interval %s",
			ErrInvalidConfig, c.MaxInterval, c.InitialInterval)
	case c.Multiplier < 1:
		return fmt.Errorf("%w: multiplier must be at least 1, got %g", ErrInvalidConfig, c.Multiplier)
	}
	return nil
}

// Backoff returns the delay before the given retry attempt (1-based).
// With jitter enabled the delay is drawn uniformly from [0, backoff].
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	backoff := c.InitialInterval
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if backoff > c.MaxInterval {
			backoff = c.MaxInterval
			break
		}
	}
	if c.UseJitter && backoff > 0 {
		return time.Duration(rand.Int64N(int64(backoff) + 1)) // #nosec G404 -- non-cryptographic jitter
	}
	return backoff
}

// WithRetry repeats calls that fail with a retryable error. Backoff waits
// respect context cancellation.
func WithRetry(cfg RetryConfig, logger *slog.Logger) (Middleware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "simulator_retry")

	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			var lastErr error
			for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
				rep, err := next.Simulate(ctx, c)
				if err == nil {
					return rep, nil
				}
				lastErr = err
				if !IsRetryable(err) || attempt == cfg.MaxAttempts {
					break
				}

				delay := cfg.Backoff(attempt)
				logger.DebugContext(ctx, "retrying simulation",
					"candidate_id", c.ID,
					"attempt", attempt,
					"delay_ms", delay.Milliseconds(),
					"error", err)

				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return domain.NumericalReport{}, ctx.Err()
				case <-timer.C:
				}
			}
			return domain.NumericalReport{}, lastErr
		})
	}, nil
}
