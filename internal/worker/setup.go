package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/config"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/metrics"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/store"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// NewRedisClient returns a client for cfg, or nil when no address is set.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// BuildSimulator assembles the simulator chain from cfg. rdb may be nil,
// which disables the result cache.
func BuildSimulator(cfg numerical.Config, rdb *redis.Client, logger *slog.Logger) (numerical.Simulator, error) {
	var cache numerical.CacheStore
	if rdb != nil {
		cache = rdb
	}
	sim, err := numerical.Build(cfg, cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build simulator: %w", err)
	}
	return sim, nil
}

// NewDependencies builds the activity collaborators described by cfg.
func NewDependencies(cfg *config.Config, sink events.EventSink, rdb *redis.Client, logger *slog.Logger) (Dependencies, error) {
	gen, err := generation.New(cfg.Generator.Name, cfg.Generator.Seed)
	if err != nil {
		return Dependencies{}, err
	}
	sim, err := BuildSimulator(cfg.Numerical, rdb, logger)
	if err != nil {
		return Dependencies{}, err
	}
	return Dependencies{
		Generator: gen,
		Validator: analytical.NewValidator(),
		Simulator: sim,
		Sink:      sink,
	}, nil
}

// Dial connects to the Temporal frontend described by cfg.
func Dial(cfg config.TemporalConfig, logger *slog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to temporal at %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

// Run starts a worker on the configured task queue and blocks until ctx is
// cancelled. The event log and the metrics endpoint are started when
// configured.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "worker")

	var sink events.EventSink
	if cfg.Store.Path != "" {
		s, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		sink = s
	}

	rdb := NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	deps, err := NewDependencies(cfg, sink, rdb, logger)
	if err != nil {
		return err
	}

	c, err := Dial(cfg.Temporal, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	w := sdkworker.New(c, cfg.Temporal.TaskQueue, sdkworker.Options{})
	RegisterAll(w, deps)

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	logger.Info("worker started",
		"task_queue", cfg.Temporal.TaskQueue,
		"namespace", cfg.Temporal.Namespace,
		"backend", cfg.Numerical.Backend)

	<-ctx.Done()
	w.Stop()
	logger.Info("worker stopped")
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
