package domain

import "strings"

// Names of the analytical checks, in execution order.
const (
	CheckDimensional   = "dimensional"
	CheckConservation  = "conservation"
	CheckBounds        = "bounds"
	CheckMathematical  = "mathematical"
	CheckThermodynamic = "thermodynamic"
)

// AnalyticalChecks returns the names of all analytical checks in execution order.
func AnalyticalChecks() []string {
	return []string{CheckDimensional, CheckConservation, CheckBounds, CheckMathematical, CheckThermodynamic}
}

// RequiredQualityChecks lists the checks whose absence lowers validation quality.
func RequiredQualityChecks() []string {
	return []string{CheckDimensional, CheckConservation, CheckBounds, CheckMathematical}
}

// AnalyticalReport is the verdict of the analytical stage for one candidate.
type AnalyticalReport struct {
	CandidateID     string   `json:"candidate_id"`
	Passed          bool     `json:"passed"`
	Violations      []string `json:"violations"`
	Warnings        []string `json:"warnings"`
	ChecksPerformed []string `json:"checks_performed"`
}

// HasCheck reports whether the named check ran.
func (r *AnalyticalReport) HasCheck(name string) bool {
	for _, c := range r.ChecksPerformed {
		if c == name {
			return true
		}
	}
	return false
}

// ViolationType returns the text before the first ':' of a violation, or the
// whole violation when it has no ':'.
func ViolationType(violation string) string {
	if i := strings.IndexByte(violation, ':'); i >= 0 {
		return violation[:i]
	}
	return violation
}
