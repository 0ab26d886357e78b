package domain

import "fmt"

// GenerateCandidatesInput asks a generator for a batch of candidates.
type GenerateCandidatesInput struct {
	Prompt string `json:"prompt" validate:"required,max=4096"`
	Count  int    `json:"count" validate:"gte=1,lte=1000"`

	Constraints GenerationConstraints `json:"constraints"`
}

// Validate checks the input.
func (i *GenerateCandidatesInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// GenerateCandidatesOutput is the generated batch.
type GenerateCandidatesOutput struct {
	Generator  string      `json:"generator"`
	Candidates []Candidate `json:"candidates"`
}

// Validate checks every generated candidate against the ingestion contract.
func (o *GenerateCandidatesOutput) Validate() error {
	return ValidateBatch(o.Candidates)
}

// ValidateCandidatesInput runs analytical checks over a batch.
type ValidateCandidatesInput struct {
	Candidates     []Candidate `json:"candidates" validate:"dive"`
	MaxConcurrency int         `json:"max_concurrency" validate:"gte=0,lte=256"`
}

// Validate checks the input.
func (i *ValidateCandidatesInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// ValidateCandidatesOutput holds one analytical report per input candidate, in input order.
type ValidateCandidatesOutput struct {
	Reports []AnalyticalReport `json:"reports"`
	Stats   RunStats           `json:"stats"`
}

// SimulateCandidatesInput runs the simulator over analytical survivors.
type SimulateCandidatesInput struct {
	Candidates     []Candidate `json:"candidates" validate:"dive"`
	MaxConcurrency int         `json:"max_concurrency" validate:"gte=0,lte=256"`
}

// Validate checks the input.
func (i *SimulateCandidatesInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// SimulateCandidatesOutput holds one numerical report per input candidate, in input order.
type SimulateCandidatesOutput struct {
	Reports []NumericalReport `json:"reports"`
	Stats   RunStats          `json:"stats"`
}

// AnalyzeBatchInput hands the complete record batch to meta oversight.
type AnalyzeBatchInput struct {
	Records              []ValidationRecord `json:"records"`
	ConsistencyThreshold float64            `json:"consistency_threshold" validate:"gte=0,lte=1"`
}

// Validate checks the input.
func (i *AnalyzeBatchInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// AnalyzeBatchOutput holds one meta report per input record, in input order.
type AnalyzeBatchOutput struct {
	Reports []MetaReport `json:"reports"`
	Stats   RunStats     `json:"stats"`
}

// CheckReportCount returns ErrBatchMismatch when a stage returned a different
// number of reports than it was given.
func CheckReportCount(stage string, want, got int) error {
	if want != got {
		return fmt.Errorf("%w: %s returned %d reports for %d inputs", ErrBatchMismatch, stage, got, want)
	}
	return nil
}
