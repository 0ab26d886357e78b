package numerical

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// DefaultCacheTTL is how long simulation results stay cached.
const DefaultCacheTTL = 24 * time.Hour

// CacheStore is the subset of the Redis client used by the cache.
// *redis.Client satisfies it.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CacheConfig controls WithCache.
type CacheConfig struct {
	// Scope separates results from differently configured backends,
	// for example "mock:fine".
	Scope string        `yaml:"scope"`
	TTL   time.Duration `yaml:"ttl"`
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// Cache stores successful simulation reports in Redis keyed by candidate
// content. Redis failures degrade to uncached calls.
type Cache struct {
	store  CacheStore
	scope  string
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewCache creates a cache over store.
func NewCache(store CacheStore, cfg CacheConfig) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	scope := cfg.Scope
	if scope == "" {
		scope = "default"
	}
	return &Cache{
		store:  store,
		scope:  scope,
		ttl:    ttl,
		logger: slog.Default().With("component", "simulator_cache"),
	}
}

// Key returns the Redis key for c. Candidate IDs are not part of the key, so
// identical candidates under different IDs share an entry.
func (m *Cache) Key(c domain.Candidate) string {
	return fmt.Sprintf("shf:sim:%s:%s", m.scope, c.Fingerprint())
}

// Stats returns a snapshot of the counters.
func (m *Cache) Stats() CacheStats {
	return CacheStats{Hits: m.hits.Load(), Misses: m.misses.Load(), Errors: m.errors.Load()}
}

// Middleware returns the cache as simulator middleware. Only reports without
// a simulator error are stored; hits are marked Cached and carry the
// caller's candidate ID.
func (m *Cache) Middleware() Middleware {
	return func(next Simulator) Simulator {
		return SimulatorFunc(func(ctx context.Context, c domain.Candidate) (domain.NumericalReport, error) {
			key := m.Key(c)
			if rep, ok := m.lookup(ctx, key); ok {
				rep.CandidateID = c.ID
				rep.Cached = true
				return rep, nil
			}

			rep, err := next.Simulate(ctx, c)
			if err != nil || rep.Error != "" {
				return rep, err
			}
			m.save(ctx, key, rep)
			return rep, nil
		})
	}
}

func (m *Cache) lookup(ctx context.Context, key string) (domain.NumericalReport, bool) {
	raw, err := m.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		m.misses.Add(1)
		return domain.NumericalReport{}, false
	}
	if err != nil {
		m.errors.Add(1)
		m.logger.WarnContext(ctx, "cache lookup failed, continuing without cache",
			"key", key,
			"error", err)
		return domain.NumericalReport{}, false
	}

	var rep domain.NumericalReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		m.errors.Add(1)
		m.logger.WarnContext(ctx, "discarding corrupt cache entry",
			"key", key,
			"error", err)
		return domain.NumericalReport{}, false
	}
	m.hits.Add(1)
	return rep, true
}

func (m *Cache) save(ctx context.Context, key string, rep domain.NumericalReport) {
	rep.Cached = false
	raw, err := json.Marshal(rep)
	if err != nil {
		m.errors.Add(1)
		return
	}
	if err := m.store.Set(ctx, key, raw, m.ttl).Err(); err != nil {
		m.errors.Add(1)
		m.logger.WarnContext(ctx, "cache write failed",
			"key", key,
			"error", err)
	}
}
