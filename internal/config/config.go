// Package config loads the framework configuration from YAML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/logging"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config contains all framework settings.
type Config struct {
	// Pipeline holds the stage switches and thresholds of a run.
	Pipeline domain.PipelineOptions `yaml:"pipeline"`

	// Generator selects the candidate generator used for prompt requests.
	Generator GeneratorConfig `yaml:"generator"`

	// Numerical selects the simulation backend and its middleware.
	Numerical numerical.Config `yaml:"numerical"`

	Temporal TemporalConfig `yaml:"temporal"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// GeneratorConfig configures candidate generation.
type GeneratorConfig struct {
	Name string `yaml:"name"`
	Seed uint64 `yaml:"seed"`

	// Constraints apply to every prompt request unless overridden per run.
	Constraints domain.GenerationConstraints `yaml:"constraints"`
}

// TemporalConfig locates the Temporal frontend and task queue.
type TemporalConfig struct {
	HostPort  string `yaml:"host_port" validate:"required,hostname_port"`
	Namespace string `yaml:"namespace" validate:"required"`
	TaskQueue string `yaml:"task_queue" validate:"required"`
}

// RedisConfig configures the simulation result cache connection.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// StoreConfig locates the run history database. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig configures the Prometheus endpoint served by the worker.
// An empty address disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Pipeline:  domain.DefaultPipelineOptions(),
		Generator: GeneratorConfig{Name: generation.GeneratorTemplates},
		Numerical: numerical.DefaultConfig(),
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "shf-validation",
		},
		Store: StoreConfig{Path: "shf.db"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Load reads path when it is non-empty, then applies environment overrides
// and validates the result.
// Order: defaults -> file -> environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Unknown keys are rejected.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Redis.Password = expandEnvVars(cfg.Redis.Password)
	return cfg, nil
}

// ParseDomains splits a comma-separated domain list and normalises each tag.
func ParseDomains(s string) []domain.Domain {
	var out []domain.Domain
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, domain.NormalizeDomain(part))
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Numerical.Validate(); err != nil {
		return fmt.Errorf("%w: numerical: %w", ErrInvalidConfig, err)
	}
	if _, err := generation.New(c.Generator.Name, c.Generator.Seed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid log level %q (valid: trace, debug, info, warn, error)", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Numerical.EnableCache && c.Redis.Addr == "" {
		return fmt.Errorf("%w: numerical cache requires redis.addr", ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides applies SHF_* environment variable overrides.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHF_ENABLE_NUMERICAL"); v != "" {
		cfg.Pipeline.EnableNumerical = parseBool(v)
	}
	if v := os.Getenv("SHF_ENABLE_META"); v != "" {
		cfg.Pipeline.EnableMeta = parseBool(v)
	}
	if v := os.Getenv("SHF_META_OVERRIDE"); v != "" {
		cfg.Pipeline.MetaCanOverridePriorRejection = parseBool(v)
	}
	if v := os.Getenv("SHF_CONSISTENCY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.ConsistencyThreshold = f
		}
	}
	if v := os.Getenv("SHF_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxConcurrency = n
		}
	}

	if v := os.Getenv("SHF_GENERATOR_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Generator.Seed = n
		}
	}
	if v := os.Getenv("SHF_MAX_COMPLEXITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.Constraints.MaxComplexity = n
		}
	}
	if v := os.Getenv("SHF_ALLOWED_DOMAINS"); v != "" {
		cfg.Generator.Constraints.AllowedDomains = ParseDomains(v)
	}

	if v := os.Getenv("SHF_SIM_BACKEND"); v != "" {
		cfg.Numerical.Backend = v
	}
	if v := os.Getenv("SHF_SIM_MESH_SIZE"); v != "" {
		cfg.Numerical.MeshSize = v
	}
	if v := os.Getenv("SHF_SIM_CACHE"); v != "" {
		cfg.Numerical.EnableCache = parseBool(v)
	}

	if v := os.Getenv("SHF_TEMPORAL_HOST_PORT"); v != "" {
		cfg.Temporal.HostPort = v
	}
	if v := os.Getenv("SHF_TEMPORAL_NAMESPACE"); v != "" {
		cfg.Temporal.Namespace = v
	}
	if v := os.Getenv("SHF_TASK_QUEUE"); v != "" {
		cfg.Temporal.TaskQueue = v
	}

	if v := os.Getenv("SHF_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SHF_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v, ok := os.LookupEnv("SHF_STORE_PATH"); ok {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SHF_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("SHF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SHF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
