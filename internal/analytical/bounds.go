package analytical

import "github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"

// Physical bound limits.
const (
	maxTemperature       = 10000.0
	largeDimension       = 1000.0
	maxEmissivity        = 1.0
	minGeometricCrossSec = 0.1
)

func isTemperature(name string) bool {
	return name == "T" || name == "T_surr" || name == "ΔT"
}

func isDimension(name string) bool {
	return name == "A" || name == "L" || name == "h" || name == "b"
}

func isMaterialProperty(name string) bool {
	return name == "k" || name == "ε" || name == "α"
}

// checkBounds evaluates each parameter independently against the per-name
// rules. Parameters are visited in sorted name order so output is stable.
func checkBounds(c domain.Candidate) (violations, warnings []string) {
	for _, name := range c.ParameterNames() {
		v := c.Parameters[name]
		pair := name + "=" + formatValue(v)

		if isTemperature(name) {
			if v < 0 {
				violations = append(violations, "Negative absolute temperature: "+pair)
			}
			if v > maxTemperature {
				violations = append(violations, "Unrealistic temperature: "+pair)
			}
		}

		if isDimension(name) {
			if v <= 0 {
				violations = append(violations, "Non-positive dimension: "+pair)
			}
			if v > largeDimension {
				warnings = append(warnings, "Large dimension: "+pair)
			}
		}

		if isMaterialProperty(name) {
			if v < 0 {
				violations = append(violations, "Negative material property: "+pair)
			}
			if name == "ε" && v > maxEmissivity {
				violations = append(violations, "Emissivity > 1.0: "+pair)
			}
		}

		if c.Domain == domain.DomainGeometric && name == "A" && v < minGeometricCrossSec {
			violations = append(violations, "Cross-section too small: "+pair)
		}
	}
	return violations, warnings
}
