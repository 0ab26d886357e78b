package numerical

import (
	"log/slog"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// Config selects a backend and the middleware around it.
type Config struct {
	Backend        string               `yaml:"backend"`
	MeshSize       string               `yaml:"mesh_size"`
	Retry          RetryConfig          `yaml:"retry"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Cache          CacheConfig          `yaml:"cache"`

	EnableRateLimit      bool `yaml:"enable_rate_limit"`
	EnableCircuitBreaker bool `yaml:"enable_circuit_breaker"`
	EnableCache          bool `yaml:"enable_cache"`
}

// DefaultConfig returns the mock backend with retries and a circuit breaker.
func DefaultConfig() Config {
	return Config{
		Backend:              BackendMock,
		Retry:                DefaultRetryConfig(),
		RateLimit:            RateLimitConfig{RequestsPerSecond: 50, Burst: 10},
		CircuitBreaker:       DefaultCircuitBreakerConfig(),
		Cache:                CacheConfig{TTL: DefaultCacheTTL},
		EnableCircuitBreaker: true,
	}
}

// Validate checks the backend name, mesh size and the settings of every
// enabled middleware.
func (c Config) Validate() error {
	if _, err := NewBackend(c.Backend); err != nil {
		return err
	}
	if c.MeshSize != "" {
		if _, err := domain.ParseMeshSize(c.MeshSize); err != nil {
			return err
		}
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if c.EnableCircuitBreaker {
		if err := c.CircuitBreaker.Validate(); err != nil {
			return err
		}
	}
	if c.EnableRateLimit {
		if err := c.RateLimit.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Build assembles the simulator described by cfg. store is only required
// when caching is enabled; a nil store disables the cache.
//
// The resulting order, outermost first, is logging, metrics, cache, circuit
// breaker, retry, rate limit, backend.
func Build(cfg Config, store CacheStore, logger *slog.Logger) (Simulator, error) {
	base, err := NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if cfg.MeshSize != "" {
		mesh, err := domain.ParseMeshSize(cfg.MeshSize)
		if err != nil {
			return nil, err
		}
		if _, ok := base.(*Mock); ok {
			base = NewMock(WithMeshSize(mesh))
		}
	}

	backend := cfg.Backend
	if backend == "" {
		backend = BackendMock
	}
	mws := []Middleware{WithLogging(logger), WithMetrics(backend)}

	if cfg.EnableCache && store != nil {
		cacheCfg := cfg.Cache
		if cacheCfg.Scope == "" {
			cacheCfg.Scope = backend + ":" + cfg.MeshSize
		}
		mws = append(mws, NewCache(store, cacheCfg).Middleware())
	}
	if cfg.EnableCircuitBreaker {
		cb, err := NewCircuitBreaker(cfg.CircuitBreaker)
		if err != nil {
			return nil, err
		}
		mws = append(mws, cb.Middleware())
	}
	retry, err := WithRetry(cfg.Retry, logger)
	if err != nil {
		return nil, err
	}
	mws = append(mws, retry)
	if cfg.EnableRateLimit {
		rl, err := WithRateLimit(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		mws = append(mws, rl)
	}

	return Chain(base, mws...), nil
}
