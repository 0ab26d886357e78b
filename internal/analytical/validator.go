// Package analytical implements the cheap screening stage of the pipeline.
// A Validator runs five independent checks over a candidate and combines
// them into one verdict: dimensional consistency, conservation laws,
// physical bounds, mathematical validity and thermodynamic feasibility.
//
// Validation is a pure function of the candidate. It never returns an error
// for bad candidate content; parse failures and out-of-range values become
// violations in the report. A Validator holds no mutable state and is safe to
// use from many goroutines at once.
package analytical

import (
	"slices"
	"strconv"
	"strings"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/symbolic"
)

// Violation prefixes. Everything before ':' is the violation type used for
// summaries and systematic-error detection.
const (
	prefixDimensional   = "Dimensional inconsistency"
	prefixConservation  = "Conservation violation"
	prefixMathematical  = "Mathematical error"
	prefixThermodynamic = "Thermodynamic violation"
)

const (
	lawEnergyConservation = "Energy conservation (efficiency > 100%)"
	reasonHeatFlow        = "Heat flow direction inconsistent with temperature gradient"
)

// Validator runs the analytical checks.
type Validator struct {
	constants map[string]float64
}

// Option configures a Validator.
type Option func(*Validator)

// WithConstants replaces the constant table used by the mathematical check.
func WithConstants(constants map[string]float64) Option {
	return func(v *Validator) {
		v.constants = constants
	}
}

// NewValidator creates a Validator with the standard physics constants.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{constants: symbolic.PhysicsConstants()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs all five checks. The report passes only when no check
// produced a violation; warnings never fail a candidate.
func (v *Validator) Validate(c domain.Candidate) domain.AnalyticalReport {
	var violations, warnings []string

	if reason, ok := checkDimensional(c.Equation); !ok {
		violations = append(violations, prefixDimensional+": "+reason)
	}

	if law, ok := checkConservation(c); !ok {
		violations = append(violations, prefixConservation+": "+law)
	}

	boundViolations, boundWarnings := checkBounds(c)
	violations = append(violations, boundViolations...)
	warnings = append(warnings, boundWarnings...)

	reason, unbound, ok := v.checkMathematical(c)
	if !ok {
		violations = append(violations, prefixMathematical+": "+reason)
	}
	warnings = append(warnings, unbound...)

	if reason, ok := checkThermodynamic(c); !ok {
		violations = append(violations, prefixThermodynamic+": "+reason)
	}

	return domain.AnalyticalReport{
		CandidateID:     c.ID,
		Passed:          len(violations) == 0,
		Violations:      violations,
		Warnings:        warnings,
		ChecksPerformed: domain.AnalyticalChecks(),
	}
}

// checkDimensional parses both sides of an equation. It tracks no units; an
// equation that parses is considered dimensionally consistent. Text without
// '=' is not an equation and passes.
func checkDimensional(equation string) (string, bool) {
	if !strings.Contains(equation, "=") {
		return "", true
	}
	res := symbolic.ParseEquation(equation, symbolic.Options{})
	if !res.OK() {
		return "Parse error: " + res.Reason(), false
	}
	return "", true
}

// checkConservation flags descriptions that claim energy output while any
// parameter exceeds 1.0, read as an efficiency above 100%.
// Mass and flow conservation are not checked yet; they always pass.
func checkConservation(c domain.Candidate) (string, bool) {
	desc := strings.ToLower(c.Description)
	if !containsAny(desc, "output", "efficiency", "energy") || !strings.Contains(desc, "output") {
		return "", true
	}
	for _, name := range c.ParameterNames() {
		if c.Parameters[name] > 1.0 {
			return lawEnergyConservation, false
		}
	}
	return "", true
}

// checkMathematical parses the whole equation with the constant table
// resolved. It also reports right-hand-side symbols that are neither
// parameters nor constants as warnings.
func (v *Validator) checkMathematical(c domain.Candidate) (reason string, warnings []string, ok bool) {
	res := symbolic.ParseEquation(c.Equation, symbolic.Options{Constants: v.constants})
	if !res.OK() {
		return res.Reason(), nil, false
	}
	eq := res.Value()
	inputs := eq.Left
	if eq.HasRight() {
		inputs = eq.Right
	}
	for _, name := range symbolic.FreeSymbols(inputs) {
		if _, bound := c.Parameters[name]; !bound {
			warnings = append(warnings, "Unbound symbol: "+name)
		}
	}
	return "", warnings, true
}

// checkThermodynamic applies to the thermal family only. A negative ΔT is
// infeasible unless the description says the candidate is about cooling.
// The Carnot-limit check is not implemented; it always passes.
func checkThermodynamic(c domain.Candidate) (string, bool) {
	if !c.Domain.IsThermalFamily() {
		return "", true
	}
	if dt, ok := c.Parameter("ΔT"); ok && dt < 0 &&
		!strings.Contains(strings.ToLower(c.Description), "cool") {
		return reasonHeatFlow, false
	}
	return "", true
}

func containsAny(s string, words ...string) bool {
	return slices.ContainsFunc(words, func(w string) bool { return strings.Contains(s, w) })
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
