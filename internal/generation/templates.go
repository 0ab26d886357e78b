package generation

import "github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"

// template is a parameterised candidate. Strings of the form "{name}" in
// Description and Parameters are filled from the sampled variables.
type template struct {
	Description string
	Equation    string
	Parameters  map[string]any
	Domain      domain.Domain
	Constraint  string
}

// Template sets by prompt domain.
const (
	SetThermal    = "thermal"
	SetStructural = "structural"
	SetGeneral    = "general"
)

var thermalTemplates = []template{
	{
		Description: "Increase surface area by {factor}x through fin addition",
		Equation:    "Q = h * A * ΔT",
		Parameters:  map[string]any{"h": 1.0, "A": "{area_multiplier}", "ΔT": 1.0},
		Domain:      domain.DomainGeometric,
	},
	{
		Description: "Modify material thermal conductivity by {percent}%",
		Equation:    "Q = k * A * ΔT / L",
		Parameters:  map[string]any{"k": "{conductivity_factor}", "A": 1.0, "ΔT": 1.0, "L": 1.0},
		Domain:      domain.DomainMaterial,
	},
	{
		Description: "Alter flow rate to increase convection coefficient",
		Equation:    "h = C * v^n",
		Parameters:  map[string]any{"C": 1.0, "v": "{velocity_factor}", "n": 0.8},
		Domain:      domain.DomainFluid,
	},
	{
		Description: "Add phase change material for latent heat storage",
		Equation:    "Q_total = m * c * ΔT + m * L_f",
		Parameters:  map[string]any{"m": 1.0, "c": 1.0, "ΔT": 1.0, "L_f": "{latent_heat}"},
		Domain:      domain.DomainPhaseChange,
	},
	{
		Description: "Implement radiative cooling with emissivity enhancement",
		Equation:    "Q_rad = ε * σ * A * (T^4 - T_surr^4)",
		Parameters:  map[string]any{"ε": "{emissivity}", "σ": 5.67e-8, "A": 1.0, "T": 300.0, "T_surr": 250.0},
		Domain:      domain.DomainRadiation,
	},
}

var structuralTemplates = []template{
	{
		Description: "Reduce cross-section by {percent}% for weight savings",
		Equation:    "σ = F / A",
		Parameters:  map[string]any{"F": 1.0, "A": "{area_factor}"},
		Domain:      domain.DomainGeometric,
		Constraint:  "σ < σ_yield",
	},
	{
		Description: "Add reinforcement ribs at {spacing} mm intervals",
		Equation:    "I = b * h^3 / 12",
		Parameters:  map[string]any{"b": 1.0, "h": "{height_factor}"},
		Domain:      domain.DomainReinforcement,
	},
}

var (
	thermalKeywords    = []string{"thermal", "heat", "temperature", "cooling"}
	structuralKeywords = []string{"structural", "stress", "strength", "load"}
)
