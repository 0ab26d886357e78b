package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition indicates a stage result applied out of order or twice.
var ErrInvalidTransition = errors.New("invalid record transition")

// ValidationRecord tracks one candidate through a pipeline run.
// Optional stages use pointers so "not run" is distinguishable from "failed".
type ValidationRecord struct {
	Candidate        Candidate         `json:"candidate"`
	AnalyticalPassed bool              `json:"analytical_passed"`
	Analytical       *AnalyticalReport `json:"analytical_report,omitempty"`
	NumericalPassed  *bool             `json:"numerical_passed,omitempty"`
	Numerical        *NumericalReport  `json:"numerical_report,omitempty"`
	MetaPassed       *bool             `json:"meta_passed,omitempty"`
	Meta             *MetaReport       `json:"meta_report,omitempty"`
	FinalStatus      Status            `json:"final_status"`
}

// NewValidationRecord starts a PENDING record for the candidate.
func NewValidationRecord(c Candidate) ValidationRecord {
	return ValidationRecord{Candidate: c, FinalStatus: StatusPending}
}

// NewValidationRecords starts one PENDING record per candidate, preserving order.
func NewValidationRecords(candidates []Candidate) []ValidationRecord {
	records := make([]ValidationRecord, len(candidates))
	for i, c := range candidates {
		records[i] = NewValidationRecord(c)
	}
	return records
}

// ApplyAnalytical records the analytical verdict. A failing verdict is terminal.
func (r *ValidationRecord) ApplyAnalytical(rep AnalyticalReport) error {
	if r.Analytical != nil || r.FinalStatus != StatusPending {
		return fmt.Errorf("%w: analytical result for %s already applied", ErrInvalidTransition, r.Candidate.ID)
	}
	if err := r.checkOwner(rep.CandidateID); err != nil {
		return err
	}
	r.Analytical = &rep
	r.AnalyticalPassed = rep.Passed
	if !rep.Passed {
		r.FinalStatus = StatusRejectedAnalytical
	}
	return nil
}

// NeedsNumerical reports whether the record survived analytical screening and
// has not been simulated yet.
func (r *ValidationRecord) NeedsNumerical() bool {
	return r.Analytical != nil && r.AnalyticalPassed &&
		r.FinalStatus == StatusPending && r.Numerical == nil
}

// ApplyNumerical records the simulator verdict. A failing verdict is terminal.
func (r *ValidationRecord) ApplyNumerical(rep NumericalReport) error {
	if !r.NeedsNumerical() {
		return fmt.Errorf("%w: %s is not awaiting simulation", ErrInvalidTransition, r.Candidate.ID)
	}
	if err := r.checkOwner(rep.CandidateID); err != nil {
		return err
	}
	passed := rep.Passed && rep.Error == ""
	r.Numerical = &rep
	r.NumericalPassed = &passed
	if !passed {
		r.FinalStatus = StatusRejectedNumerical
	}
	return nil
}

// Finalize settles a record that survived every per-candidate stage.
// PASSED_ALL is reserved for records whose simulation ran and passed.
func (r *ValidationRecord) Finalize() {
	if r.FinalStatus != StatusPending || r.Analytical == nil {
		return
	}
	if r.NumericalPassed != nil && *r.NumericalPassed {
		r.FinalStatus = StatusPassedAll
		return
	}
	r.FinalStatus = StatusPassed
}

// ApplyMeta records the oversight verdict. A failing verdict downgrades an
// accepted record to REJECTED_META; when overridePrior is set it also
// overwrites earlier rejections.
func (r *ValidationRecord) ApplyMeta(rep MetaReport, overridePrior bool) error {
	if r.Meta != nil {
		return fmt.Errorf("%w: meta result for %s already applied", ErrInvalidTransition, r.Candidate.ID)
	}
	if err := r.checkOwner(rep.CandidateID); err != nil {
		return err
	}
	passed := rep.Passed
	r.Meta = &rep
	r.MetaPassed = &passed
	if passed {
		return nil
	}
	if overridePrior || r.FinalStatus.IsPassed() {
		r.FinalStatus = StatusRejectedMeta
	}
	return nil
}

// Violations returns the analytical violations of the record, or nil.
func (r *ValidationRecord) Violations() []string {
	if r.Analytical == nil {
		return nil
	}
	return r.Analytical.Violations
}

func (r *ValidationRecord) checkOwner(id string) error {
	if id != "" && id != r.Candidate.ID {
		return fmt.Errorf("%w: report for %s applied to %s", ErrInvalidTransition, id, r.Candidate.ID)
	}
	return nil
}
