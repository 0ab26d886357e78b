// Package domain provides the core types and pure business logic of the staged
// validation pipeline. It defines candidates, validation records and their
// stage transitions, per-stage reports, pipeline options and the aggregate
// report. The types are plain data so they can cross Temporal activity
// boundaries unchanged, and every transition is deterministic so workflow
// code can apply it during replay.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Domain tags the physical area a candidate belongs to.
// The tag set is open; the constants below are the tags the checks know about.
type Domain string

// Known domain tags.
const (
	DomainThermal       Domain = "thermal"
	DomainStructural    Domain = "structural"
	DomainGeometric     Domain = "geometric"
	DomainMaterial      Domain = "material"
	DomainFluid         Domain = "fluid"
	DomainPhaseChange   Domain = "phase_change"
	DomainRadiation     Domain = "radiation"
	DomainReinforcement Domain = "reinforcement"
	DomainUnknown       Domain = "unknown"
)

// String returns the tag value.
func (d Domain) String() string { return string(d) }

// IsThermalFamily reports whether heat-flow feasibility rules apply to the domain.
func (d Domain) IsThermalFamily() bool {
	switch d {
	case DomainThermal, DomainPhaseChange, DomainFluid, DomainRadiation:
		return true
	default:
		return false
	}
}

// NormalizeDomain lower-cases and trims a tag, mapping the empty tag to DomainUnknown.
func NormalizeDomain(s string) Domain {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DomainUnknown
	}
	return Domain(s)
}

// Candidate is a proposed explanation or design modification under validation.
// Candidates are treated as immutable once ingested; use Clone before changing
// any field of a candidate that is shared.
type Candidate struct {
	// ID uniquely identifies the candidate within a batch.
	ID string `json:"id" yaml:"id" validate:"required"`

	// Description is the free-text explanation proposed by the generator.
	Description string `json:"description" yaml:"description"`

	// Equation is a textual algebraic expression, optionally containing "=".
	Equation string `json:"equation" yaml:"equation" validate:"max=4096"`

	// Parameters maps symbol names to numeric values.
	// Template placeholders must be substituted before ingestion.
	Parameters map[string]float64 `json:"parameters" yaml:"parameters" validate:"required"`

	// Attributes carries non-numeric values that arrived with the candidate.
	// Checks never read them.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Domain tags the physical area the candidate addresses.
	Domain Domain `json:"domain" yaml:"domain" validate:"required"`
}

// Validate checks the candidate against the ingestion contract.
func (c *Candidate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCandidate, c.ID, err)
	}
	for _, name := range c.ParameterNames() {
		if v := c.Parameters[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: parameter %s is not finite", ErrInvalidCandidate, c.ID, name)
		}
	}
	return nil
}

// Clone returns a deep copy of the candidate.
func (c Candidate) Clone() Candidate {
	c.Parameters = cloneFloatMap(c.Parameters)
	c.Attributes = cloneStringMap(c.Attributes)
	return c
}

// Parameter returns the numeric value for name and whether it is present.
func (c *Candidate) Parameter(name string) (float64, bool) {
	v, ok := c.Parameters[name]
	return v, ok
}

// ParameterNames returns the parameter names in sorted order.
func (c *Candidate) ParameterNames() []string {
	names := make([]string, 0, len(c.Parameters))
	for name := range c.Parameters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Fingerprint returns a stable SHA-256 digest of the candidate content.
// The ID is excluded so identical proposals share cache entries.
func (c *Candidate) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(c.Domain))
	b.WriteByte(0)
	b.WriteString(c.Equation)
	b.WriteByte(0)
	b.WriteString(c.Description)
	for _, name := range c.ParameterNames() {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(c.Parameters[name], 'g', -1, 64))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
