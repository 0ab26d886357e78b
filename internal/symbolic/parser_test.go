package symbolic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WellFormed(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		symbols []string
		render  string
	}{
		{"product", "h * A * ΔT", []string{"A", "h", "ΔT"}, "((h * A) * ΔT)"},
		{"quotient", "k * A * ΔT / L", []string{"A", "L", "k", "ΔT"}, "(((k * A) * ΔT) / L)"},
		{"power caret", "C * v^n", []string{"C", "n", "v"}, "(C * (v ^ n))"},
		{"power stars", "b * h**3 / 12", []string{"b", "h"}, "((b * (h ^ 3)) / 12)"},
		{"right assoc power", "a^b^c", []string{"a", "b", "c"}, "(a ^ (b ^ c))"},
		{"unary minus binds looser than power", "-x^2", []string{"x"}, "-(x ^ 2)"},
		{"negative exponent", "x^-1", []string{"x"}, "(x ^ -1)"},
		{"parentheses", "ε * σ * A * (T^4 - T_surr^4)", []string{"A", "T", "T_surr", "ε", "σ"}, ""},
		{"scientific literal", "5.67e-8 * T^4", []string{"T"}, "(5.67e-08 * (T ^ 4))"},
		{"leading dot literal", ".5 * m", []string{"m"}, "(0.5 * m)"},
		{"function call", "sqrt(x + y) * exp(-z)", []string{"x", "y", "z"}, "(sqrt((x + y)) * exp(-z))"},
		{"comparison", "a < b", []string{"a", "b"}, "(a < b)"},
		{"number only", "42", []string{}, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.text, Options{})
			require.True(t, res.OK(), "unexpected failure: %s", res.Reason())
			assert.Empty(t, res.Reason())
			assert.Equal(t, tt.symbols, FreeSymbols(res.Value()))
			if tt.render != "" {
				assert.Equal(t, tt.render, res.Value().String())
			}
		})
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{"empty", "", "empty expression"},
		{"blank", "   ", "empty expression"},
		{"dangling operator", "a +", "unexpected end of input"},
		{"leading binary operator", "* a", `unexpected "*"`},
		{"adjacent operands", "2 x", "missing operator"},
		{"implicit call on number", "2(x)", "missing operator"},
		{"unbalanced open", "(a + b", "expected ')'"},
		{"unbalanced close", "a + b)", `unexpected ")"`},
		{"bad character", "a $ b", "unexpected character '$'"},
		{"malformed exponent", "1e+ * a", "malformed number"},
		{"bad call args", "f(a b)", "expected ',' or ')'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.text, Options{})
			require.False(t, res.OK())
			assert.Nil(t, res.Value())
			assert.Contains(t, res.Reason(), tt.reason)
		})
	}
}

func TestParse_NestingLimit(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("(", n) + "x" + strings.Repeat(")", n)
	}

	res := Parse(nested(50), Options{})
	require.True(t, res.OK(), res.Reason())
	assert.Equal(t, "x", res.Value().String())

	for name, text := range map[string]string{
		"parentheses": nested(100000),
		"unary":       strings.Repeat("-", 100000) + "x",
		"exponent":    strings.Repeat("x^", 100000) + "x",
		"calls":       strings.Repeat("f(", 100000) + "x" + strings.Repeat(")", 100000),
	} {
		t.Run(name, func(t *testing.T) {
			res := Parse(text, Options{})
			require.False(t, res.OK())
			assert.Contains(t, res.Reason(), "nested too deeply")
		})
	}

	eq := ParseEquation("Q = "+nested(1000000), Options{})
	require.False(t, eq.OK())
	assert.Contains(t, eq.Reason(), "right side: expression nested too deeply")
}

func TestParse_ConstantsAreNotFreeSymbols(t *testing.T) {
	res := Parse("ε * σ * A * g", Options{Constants: PhysicsConstants()})
	require.True(t, res.OK())
	assert.Equal(t, []string{"A", "ε"}, FreeSymbols(res.Value()))

	res = Parse("ε * σ * A * g", Options{})
	require.True(t, res.OK())
	assert.Equal(t, []string{"A", "g", "ε", "σ"}, FreeSymbols(res.Value()))
}

func TestParseEquation(t *testing.T) {
	t.Run("two sides", func(t *testing.T) {
		res := ParseEquation("Q = h * A * ΔT", Options{})
		require.True(t, res.OK())
		eq := res.Value()
		assert.True(t, eq.HasRight())
		assert.Equal(t, []string{"Q"}, FreeSymbols(eq.Left))
		assert.Equal(t, []string{"A", "Q", "h", "ΔT"}, eq.FreeSymbols())
	})

	t.Run("no separator", func(t *testing.T) {
		res := ParseEquation("m * c * ΔT", Options{})
		require.True(t, res.OK())
		assert.False(t, res.Value().HasRight())
	})

	t.Run("too many separators", func(t *testing.T) {
		res := ParseEquation("a = b = c", Options{})
		require.False(t, res.OK())
		assert.Equal(t, "expected at most one '=', found 2", res.Reason())
	})

	t.Run("empty side", func(t *testing.T) {
		res := ParseEquation("Q = ", Options{})
		require.False(t, res.OK())
		assert.Equal(t, "right side: empty expression", res.Reason())
	})

	t.Run("bad left side", func(t *testing.T) {
		res := ParseEquation("Q Q = 1", Options{})
		require.False(t, res.OK())
		assert.Contains(t, res.Reason(), "left side:")
	})
}

func TestResult(t *testing.T) {
	ok := Ok(3)
	assert.True(t, ok.OK())
	assert.Equal(t, 3, ok.Value())

	bad := Fail[int]("")
	assert.False(t, bad.OK())
	assert.Equal(t, "parse failed", bad.Reason())
	assert.Zero(t, bad.Value())
}

func FuzzParseNeverPanics(f *testing.F) {
	for _, seed := range []string{"Q = h * A * ΔT", "a^^b", "((", "1e", "f(,)", "σ*ε", "\xff"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, text string) {
		res := ParseEquation(text, Options{Constants: PhysicsConstants()})
		if !res.OK() {
			assert.NotEmpty(t, res.Reason())
		}
	})
}
