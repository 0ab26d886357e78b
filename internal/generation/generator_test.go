package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

func TestDetectSet(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"How can we increase heat transfer efficiency?", SetThermal},
		{"Improve passive COOLING of the enclosure", SetThermal},
		{"Reduce stress in the bracket", SetStructural},
		{"increase load capacity", SetStructural},
		{"make it cheaper", SetGeneral},
		{"thermal stress in a beam", SetThermal},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSet(tt.prompt))
		})
	}
}

func TestTemplates_Generate(t *testing.T) {
	ctx := context.Background()
	g := NewTemplates(0)

	t.Run("thermal set", func(t *testing.T) {
		got, err := g.Generate(ctx, "How can we increase heat transfer efficiency?", 5)
		require.NoError(t, err)
		require.Len(t, got, 5)

		wantDomains := []domain.Domain{
			domain.DomainGeometric, domain.DomainMaterial, domain.DomainFluid,
			domain.DomainPhaseChange, domain.DomainRadiation,
		}
		for i, c := range got {
			assert.Equal(t, fmt.Sprintf("hyp_%d", i), c.ID)
			assert.Equal(t, wantDomains[i], c.Domain)
			assert.NoError(t, c.Validate())
			assert.NotContains(t, c.Description, "{")
		}

		a := got[0].Parameters["A"]
		assert.GreaterOrEqual(t, a, 1.5)
		assert.LessOrEqual(t, a, 3.0)
		assert.Contains(t, got[0].Description, fmt.Sprintf("%.1fx", a))

		k := got[1].Parameters["k"]
		assert.GreaterOrEqual(t, k, 1.10)
		assert.LessOrEqual(t, k, 1.50)

		eps := got[4].Parameters["ε"]
		assert.Greater(t, eps, 0.0)
		assert.Less(t, eps, 1.0)
	})

	t.Run("structural set", func(t *testing.T) {
		got, err := g.Generate(ctx, "reduce stress", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.DomainGeometric, got[0].Domain)
		assert.Equal(t, "σ < σ_yield", got[0].Attributes[AttributeConstraint])
		assert.Equal(t, domain.DomainReinforcement, got[1].Domain)
		assert.Regexp(t, `ribs at (50|100|150|200) mm`, got[1].Description)
	})

	t.Run("general prompts use thermal templates", func(t *testing.T) {
		got, err := g.Generate(ctx, "make it better", 1)
		require.NoError(t, err)
		assert.Equal(t, "Q = h * A * ΔT", got[0].Equation)
	})

	t.Run("count beyond set cycles templates", func(t *testing.T) {
		got, err := g.Generate(ctx, "reduce stress", 5)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, got[0].Equation, got[2].Equation)
		assert.Equal(t, "hyp_4", got[4].ID)
		assert.NoError(t, domain.ValidateBatch(got))
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		first, err := NewTemplates(7).Generate(ctx, "heat", 5)
		require.NoError(t, err)
		second, err := NewTemplates(7).Generate(ctx, "heat", 5)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := g.Generate(ctx, "  ", 3)
		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, ErrorValidation, ge.Type)

		_, err = g.Generate(ctx, "heat", 0)
		require.ErrorAs(t, err, &ge)
	})
}

func TestGenerateWithConstraints(t *testing.T) {
	ctx := context.Background()
	g := NewTemplates(0)

	got, err := GenerateWithConstraints(ctx, g, "heat", Constraints{MaxComplexity: 3}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	for _, c := range got {
		assert.LessOrEqual(t, len(c.Parameters), 3)
	}

	got, err = GenerateWithConstraints(ctx, g, "heat", Constraints{AllowedDomains: []domain.Domain{domain.DomainRadiation}}, 2)
	require.NoError(t, err)
	assert.Empty(t, got, "the pool of 4 candidates holds no radiation template")

	got, err = GenerateWithConstraints(ctx, g, "heat", Constraints{AllowedDomains: []domain.Domain{domain.DomainRadiation}}, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.DomainRadiation, got[0].Domain)
}

func TestNew(t *testing.T) {
	g, err := New("", 1)
	require.NoError(t, err)
	assert.Equal(t, GeneratorTemplates, g.Name())

	_, err = New("gpt", 1)
	require.ErrorIs(t, err, ErrUnknownGenerator)
}

func TestError(t *testing.T) {
	err := &Error{Type: ErrorGenerator, Message: "backend down", Retryable: true, Cause: ErrEmptyBatch}
	assert.True(t, strings.HasPrefix(err.Error(), "generator: backend down [retryable]"))
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRetryable(validationError(nil, "bad")))
}
