package domain

import (
	"errors"
	"fmt"
	"slices"
)

// PipelineRequest starts a pipeline run. Either Prompt (with Count) or a
// pre-built Candidates batch must be supplied; Candidates wins when both are set.
type PipelineRequest struct {
	RunID      string          `json:"run_id" validate:"omitempty,uuid"`
	Prompt     string          `json:"prompt,omitempty" validate:"max=4096"`
	Count      int             `json:"count,omitempty" validate:"gte=0,lte=1000"`
	Candidates []Candidate     `json:"candidates,omitempty" validate:"dive"`
	Options    PipelineOptions `json:"options"`

	// Constraints filter prompt-generated candidates. Ignored for Candidates.
	Constraints GenerationConstraints `json:"constraints"`
}

// GenerationConstraints filter generated candidates. The zero value allows
// everything.
type GenerationConstraints struct {
	// MaxComplexity caps the number of parameters; 0 means no cap.
	MaxComplexity int `json:"max_complexity,omitempty" yaml:"max_complexity" validate:"gte=0"`
	// AllowedDomains restricts domains; empty allows all.
	AllowedDomains []Domain `json:"allowed_domains,omitempty" yaml:"allowed_domains"`
}

// IsZero reports whether no constraint is set.
func (k GenerationConstraints) IsZero() bool {
	return k.MaxComplexity == 0 && len(k.AllowedDomains) == 0
}

// Allows reports whether c satisfies the constraints.
func (k GenerationConstraints) Allows(c Candidate) bool {
	if k.MaxComplexity > 0 && len(c.Parameters) > k.MaxComplexity {
		return false
	}
	if len(k.AllowedDomains) > 0 && !slices.Contains(k.AllowedDomains, c.Domain) {
		return false
	}
	return true
}

// Validate checks the request before any stage runs.
func (r *PipelineRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if len(r.Candidates) == 0 && r.Prompt == "" {
		return fmt.Errorf("%w: either prompt or candidates is required", ErrInvalidRequest)
	}
	if err := r.Options.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	seen := make(map[string]struct{}, len(r.Candidates))
	for i := range r.Candidates {
		if err := r.Candidates[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if _, dup := seen[r.Candidates[i].ID]; dup {
			return fmt.Errorf("%w: duplicate candidate id %q", ErrInvalidRequest, r.Candidates[i].ID)
		}
		seen[r.Candidates[i].ID] = struct{}{}
	}
	return nil
}

// NeedsGeneration reports whether candidates must be produced from the prompt.
func (r *PipelineRequest) NeedsGeneration() bool {
	return len(r.Candidates) == 0
}

// EffectiveCount returns the number of candidates to generate.
func (r *PipelineRequest) EffectiveCount() int {
	if r.Count <= 0 {
		return DefaultCandidateCount
	}
	return r.Count
}

// ValidateBatch checks a generated batch against the ingestion contract
// before it enters the analytical stage.
func ValidateBatch(candidates []Candidate) error {
	var errs []error
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[candidates[i].ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate id %q", ErrInvalidCandidate, candidates[i].ID))
		}
		seen[candidates[i].ID] = struct{}{}
	}
	return errors.Join(errs...)
}
