package domain

import (
	"fmt"
	"strings"
)

// Status is the final verdict of a validation record.
// The set is closed; any value outside the constants below is invalid.
type Status uint8

const (
	// StatusPending is the initial status before any stage has decided.
	StatusPending Status = iota
	// StatusRejectedAnalytical means the analytical stage found violations.
	StatusRejectedAnalytical
	// StatusRejectedNumerical means the simulator rejected the candidate or failed.
	StatusRejectedNumerical
	// StatusRejectedMeta means batch oversight vetoed the candidate.
	StatusRejectedMeta
	// StatusPassed means analytical (and meta, when enabled) accepted the candidate.
	StatusPassed
	// StatusPassedAll means the numerical stage also ran and passed.
	StatusPassedAll
)

var statusNames = [...]string{
	StatusPending:            "PENDING",
	StatusRejectedAnalytical: "REJECTED_ANALYTICAL",
	StatusRejectedNumerical:  "REJECTED_NUMERICAL",
	StatusRejectedMeta:       "REJECTED_META",
	StatusPassed:             "PASSED",
	StatusPassedAll:          "PASSED_ALL",
}

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	return int(s) < len(statusNames)
}

// IsPassed reports whether the record was accepted.
func (s Status) IsPassed() bool {
	return s == StatusPassed || s == StatusPassedAll
}

// IsRejected reports whether some stage rejected the record.
func (s Status) IsRejected() bool {
	switch s {
	case StatusRejectedAnalytical, StatusRejectedNumerical, StatusRejectedMeta:
		return true
	default:
		return false
	}
}

// ParseStatus converts a status name into a Status. Matching is case-insensitive.
func ParseStatus(name string) (Status, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusPending, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// MarshalText encodes the status by name so JSON and YAML output stay readable.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
