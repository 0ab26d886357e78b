package generation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// Generator produces candidates for a prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, count int) ([]domain.Candidate, error)
}

// GeneratorTemplates is the name of the built-in template generator.
const GeneratorTemplates = "templates"

// New returns the named generator.
func New(name string, seed uint64) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GeneratorTemplates:
		return NewTemplates(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}
}

// Templates generates candidates from fixed thermal and structural template
// sets. Output depends only on the prompt, the count and the seed.
type Templates struct {
	seed uint64
}

// NewTemplates creates a template generator.
func NewTemplates(seed uint64) *Templates {
	return &Templates{seed: seed}
}

// Name returns GeneratorTemplates.
func (g *Templates) Name() string { return GeneratorTemplates }

// DetectSet picks the template set for a prompt by keyword.
func DetectSet(prompt string) string {
	p := strings.ToLower(prompt)
	switch {
	case containsAny(p, thermalKeywords):
		return SetThermal
	case containsAny(p, structuralKeywords):
		return SetStructural
	default:
		return SetGeneral
	}
}

// Generate returns count candidates with IDs hyp_0 .. hyp_{count-1}. When
// count exceeds the template set, templates repeat with fresh samples.
func (g *Templates) Generate(ctx context.Context, prompt string, count int) ([]domain.Candidate, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, validationError(nil, "prompt is required")
	}
	if count < 1 || count > domain.MaxCandidateCount {
		return nil, validationError(nil, "count must be between 1 and %d, got %d", domain.MaxCandidateCount, count)
	}

	set := thermalTemplates
	if DetectSet(prompt) == SetStructural {
		set = structuralTemplates
	}

	out := make([]domain.Candidate, 0, count)
	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := g.instantiate(set[i%len(set)], i)
		if err != nil {
			return nil, &Error{Type: ErrorInternal, Message: fmt.Sprintf("template %d", i%len(set)), Cause: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// Constraints filter generated candidates.
type Constraints = domain.GenerationConstraints

// GenerateWithConstraints over-generates twice the requested count and keeps
// at most count candidates that satisfy the constraints.
func GenerateWithConstraints(
	ctx context.Context,
	g Generator,
	prompt string,
	k Constraints,
	count int,
) ([]domain.Candidate, error) {
	pool, err := g.Generate(ctx, prompt, min(2*count, domain.MaxCandidateCount))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, count)
	for _, c := range pool {
		if len(out) == count {
			break
		}
		if k.Allows(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

var placeholderRE = regexp.MustCompile(`\{([A-Za-z_]+)\}`)

// instantiate fills a template's placeholders with values sampled from a
// generator seeded by the candidate index, then ingests the result so that
// generated candidates obey the same contract as loaded ones.
func (g *Templates) instantiate(t template, index int) (domain.Candidate, error) {
	vars := sampleVariables(rand.New(rand.NewPCG(g.seed, uint64(index)))) // #nosec G404 -- reproducible sampling

	params := make(map[string]any, len(t.Parameters))
	for name, v := range t.Parameters {
		s, ok := v.(string)
		if !ok {
			params[name] = v
			continue
		}
		key := strings.Trim(s, "{}")
		if val, ok := vars.numeric[key]; ok {
			params[name] = val
		} else {
			params[name] = s
		}
	}

	description := placeholderRE.ReplaceAllStringFunc(t.Description, func(m string) string {
		if text, ok := vars.text[strings.Trim(m, "{}")]; ok {
			return text
		}
		return m
	})

	return Ingest(Document{
		ID:          fmt.Sprintf("hyp_%d", index),
		Description: description,
		Equation:    t.Equation,
		Parameters:  params,
		Domain:      string(t.Domain),
		Constraint:  t.Constraint,
	})
}

type variables struct {
	numeric map[string]float64
	text    map[string]string
}

func sampleVariables(rng *rand.Rand) variables {
	factor := 1.5 + rng.Float64()*1.5
	factor = float64(int(factor*10+0.5)) / 10
	percent := 10 + rng.IntN(41)
	spacing := []int{50, 100, 150, 200}[rng.IntN(4)]
	scaled := 1 + float64(percent)/100

	return variables{
		numeric: map[string]float64{
			"area_multiplier":     factor,
			"velocity_factor":     factor,
			"conductivity_factor": scaled,
			"area_factor":         scaled,
			"latent_heat":         150 + rng.Float64()*200,
			"emissivity":          0.7 + rng.Float64()*0.25,
			"height_factor":       float64(spacing) / 100,
		},
		text: map[string]string{
			"factor":  strconv.FormatFloat(factor, 'f', 1, 64),
			"percent": strconv.Itoa(percent),
			"spacing": strconv.Itoa(spacing),
		},
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
