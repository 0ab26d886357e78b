// Package numerical runs the high-fidelity simulation stage. A Simulator turns
// one candidate into a NumericalReport; middleware layers add logging,
// metrics, retries, rate limiting, circuit breaking and Redis caching around
// any backend without changing its contract.
package numerical

import (
	"context"
	"fmt"
	"strings"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// Backend names accepted by NewBackend.
const (
	BackendMock        = "mock"
	BackendPassThrough = "passthrough"
)

// Simulator runs a simulation for a single candidate.
// Implementations must be safe for concurrent use.
type Simulator interface {
	Simulate(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error)
}

// SimulatorFunc adapts a function to the Simulator interface.
type SimulatorFunc func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error)

// Simulate calls f(ctx, c).
func (f SimulatorFunc) Simulate(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
	return f(ctx, c)
}

// Middleware wraps a Simulator with additional behavior.
type Middleware func(Simulator) Simulator

// Chain applies middleware to base. The first middleware is the outermost.
func Chain(base Simulator, mws ...Middleware) Simulator {
	sim := base
	for i := len(mws) - 1; i >= 0; i-- {
		sim = mws[i](sim)
	}
	return sim
}

// PassThrough is a no-op backend: every candidate passes and converges.
type PassThrough struct{}

// Simulate returns a passing report without doing any work.
func (PassThrough) Simulate(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.NumericalReport{}, err
	}
	return domain.NumericalReport{
		CandidateID: c.ID,
		Passed:      true,
		Converged:   true,
		Solver:      BackendPassThrough,
	}, nil
}

// NewBackend returns the named base simulator.
func NewBackend(name string) (Simulator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendMock:
		return NewMock(), nil
	case BackendPassThrough:
		return PassThrough{}, nil
	default:
		return nil, &BackendError{
			Backend: name,
			Message: fmt.Sprintf("simulation backend %q is not implemented", name),
		}
	}
}
