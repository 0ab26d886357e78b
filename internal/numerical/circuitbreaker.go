package numerical

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// CircuitState is the state of a circuit breaker.
type CircuitState int32

const (
	// StateClosed allows calls through.
	StateClosed CircuitState = iota
	// StateOpen rejects all calls.
	StateOpen
	// StateHalfOpen allows a limited number of probe calls.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls a CircuitBreaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
	HalfOpenProbes   int           `yaml:"half_open_probes"`
}

// DefaultCircuitBreakerConfig opens after five consecutive failures.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		HalfOpenProbes:   1,
	}
}

// Validate checks the breaker thresholds.
func (c CircuitBreakerConfig) Validate() error {
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("%w: failure threshold must be at least 1", ErrInvalidConfig)
	case c.SuccessThreshold < 1:
		return fmt.Errorf("%w: success threshold must be at least 1", ErrInvalidConfig)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("%w: open timeout must be positive", ErrInvalidConfig)
	case c.HalfOpenProbes < 1:
		return fmt.Errorf("%w: half-open probes must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// CircuitBreaker stops calling a failing backend until it has had time to
// recover. Only backend failures count; context errors are ignored.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	success  int
	probes   int
	openedAt time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}, nil
}

// State returns the current state, moving open to half-open once the
// open timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpenLocked()
	return cb.state
}

func (cb *CircuitBreaker) maybeHalfOpenLocked() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transitionLocked(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) allow() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeHalfOpenLocked()
	switch cb.state {
	case StateClosed:
		return false, nil
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenProbes {
			return false, fmt.Errorf("%w: half-open probe limit reached", ErrCircuitOpen)
		}
		cb.probes++
		return true, nil
	default:
		return false, ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(probe bool, failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe && cb.probes > 0 {
		cb.probes--
	}
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transitionLocked(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			cb.transitionLocked(StateOpen)
			return
		}
		cb.success++
		if cb.success >= cb.cfg.SuccessThreshold {
			cb.transitionLocked(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) release(probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if probe && cb.probes > 0 {
		cb.probes--
	}
}

func (cb *CircuitBreaker) transitionLocked(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.success = 0
	cb.probes = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	slog.Info("circuit breaker state transition",
		"component", "simulator_circuit_breaker",
		"from", from.String(),
		"to", to.String())
}

// Middleware returns the breaker as simulator middleware.
func (cb *CircuitBreaker) Middleware() Middleware {
	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			probe, err := cb.allow()
			if err != nil {
				return domain.NumericalReport{}, err
			}
			rep, err := next.Simulate(ctx, c)
			if err != nil && ctx.Err() != nil {
				cb.release(probe)
				return rep, err
			}
			cb.record(probe, err != nil)
			return rep, err
		})
	}
}
