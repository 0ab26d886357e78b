package domain

import "fmt"

// Default pipeline option values.
const (
	DefaultConsistencyThreshold = 0.8
	DefaultMaxConcurrency       = 8
	DefaultCandidateCount       = 5
	MaxCandidateCount           = 1000
)

// PipelineOptions selects which stages run and how.
type PipelineOptions struct {
	// EnableNumerical runs the simulator on analytical survivors.
	EnableNumerical bool `json:"enable_numerical" yaml:"enable_numerical"`

	// EnableMeta runs batch oversight over every record.
	EnableMeta bool `json:"enable_meta" yaml:"enable_meta"`

	// ConsistencyThreshold is the minimum consistency score for a meta pass.
	ConsistencyThreshold float64 `json:"consistency_threshold" yaml:"consistency_threshold" validate:"gte=0,lte=1"`

	// MetaCanOverridePriorRejection lets a meta failure replace an earlier
	// REJECTED_ANALYTICAL or REJECTED_NUMERICAL status with REJECTED_META.
	// When false, only accepted records are downgraded.
	MetaCanOverridePriorRejection bool `json:"meta_can_override_prior_rejection" yaml:"meta_can_override_prior_rejection"`

	// MaxConcurrency bounds parallel analytical and numerical work.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" validate:"gte=1,lte=256"`
}

// DefaultPipelineOptions returns options that run analytical and meta stages
// with the source override policy.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		EnableNumerical:               false,
		EnableMeta:                    true,
		ConsistencyThreshold:          DefaultConsistencyThreshold,
		MetaCanOverridePriorRejection: true,
		MaxConcurrency:                DefaultMaxConcurrency,
	}
}

// Validate checks option ranges.
func (o *PipelineOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
