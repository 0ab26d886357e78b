package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Candidate)
		wantErr bool
	}{
		{"valid", func(*Candidate) {}, false},
		{"empty parameters allowed", func(c *Candidate) { c.Parameters = map[string]float64{} }, false},
		{"missing id", func(c *Candidate) { c.ID = "" }, true},
		{"missing parameters", func(c *Candidate) { c.Parameters = nil }, true},
		{"missing domain", func(c *Candidate) { c.Domain = "" }, true},
		{"nan parameter", func(c *Candidate) { c.Parameters["k"] = math.NaN() }, true},
		{"infinite parameter", func(c *Candidate) { c.Parameters["A"] = math.Inf(1) }, true},
		{"oversized equation", func(c *Candidate) { c.Equation = "Q = " + strings.Repeat("x + ", 1100) + "x" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCandidate("c1")
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCandidate)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCandidate_CloneDoesNotAlias(t *testing.T) {
	c := testCandidate("c1")
	c.Attributes = map[string]string{"source": "template"}

	clone := c.Clone()
	clone.Parameters["k"] = 1
	clone.Attributes["source"] = "llm"

	assert.InDelta(t, 200.0, c.Parameters["k"], 0)
	assert.Equal(t, "template", c.Attributes["source"])
}

func TestCandidate_Fingerprint(t *testing.T) {
	a := testCandidate("a")
	b := testCandidate("b")
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "id is not part of the fingerprint")

	b.Parameters["k"] = 201
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestCandidate_ParameterNamesSorted(t *testing.T) {
	c := testCandidate("c1")
	assert.Equal(t, []string{"A", "L", "k", "ΔT"}, c.ParameterNames())
}

func TestDomain(t *testing.T) {
	assert.True(t, DomainThermal.IsThermalFamily())
	assert.True(t, DomainRadiation.IsThermalFamily())
	assert.True(t, DomainFluid.IsThermalFamily())
	assert.True(t, DomainPhaseChange.IsThermalFamily())
	assert.False(t, DomainMaterial.IsThermalFamily())
	assert.False(t, DomainStructural.IsThermalFamily())

	assert.Equal(t, DomainUnknown, NormalizeDomain("  "))
	assert.Equal(t, DomainGeometric, NormalizeDomain(" Geometric "))
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusRejectedAnalytical, StatusRejectedNumerical, StatusRejectedMeta, StatusPassed, StatusPassedAll} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	assert.True(t, StatusPassedAll.IsPassed())
	assert.False(t, StatusPending.IsPassed())
	assert.True(t, StatusRejectedMeta.IsRejected())
	assert.False(t, StatusPassed.IsRejected())
	assert.False(t, Status(99).IsValid())
	assert.Equal(t, "Status(99)", Status(99).String())

	_, err := ParseStatus("MAYBE")
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = json.Marshal(Status(99))
	require.Error(t, err)

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"passed_all"`), &s))
	assert.Equal(t, StatusPassedAll, s)
}

func TestPipelineRequest_Validate(t *testing.T) {
	base := func() PipelineRequest {
		return PipelineRequest{Prompt: "increase thermal efficiency", Count: 3, Options: DefaultPipelineOptions()}
	}

	tests := []struct {
		name    string
		mutate  func(r *PipelineRequest)
		wantErr bool
	}{
		{"prompt only", func(*PipelineRequest) {}, false},
		{"candidates only", func(r *PipelineRequest) {
			r.Prompt = ""
			r.Candidates = []Candidate{testCandidate("a")}
		}, false},
		{"neither prompt nor candidates", func(r *PipelineRequest) { r.Prompt = "" }, true},
		{"bad run id", func(r *PipelineRequest) { r.RunID = "not-a-uuid" }, true},
		{"count too large", func(r *PipelineRequest) { r.Count = 5000 }, true},
		{"threshold out of range", func(r *PipelineRequest) { r.Options.ConsistencyThreshold = 1.5 }, true},
		{"zero concurrency", func(r *PipelineRequest) { r.Options.MaxConcurrency = 0 }, true},
		{"duplicate candidate ids", func(r *PipelineRequest) {
			r.Candidates = []Candidate{testCandidate("a"), testCandidate("a")}
		}, true},
		{"invalid candidate", func(r *PipelineRequest) {
			c := testCandidate("a")
			c.Parameters = nil
			r.Candidates = []Candidate{c}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPipelineRequest_EffectiveCount(t *testing.T) {
	req := PipelineRequest{Prompt: "x"}
	assert.Equal(t, DefaultCandidateCount, req.EffectiveCount())
	req.Count = 12
	assert.Equal(t, 12, req.EffectiveCount())
	assert.True(t, req.NeedsGeneration())
}

func TestValidateBatch(t *testing.T) {
	require.NoError(t, ValidateBatch([]Candidate{testCandidate("a"), testCandidate("b")}))

	bad := testCandidate("b")
	bad.Parameters = nil
	err := ValidateBatch([]Candidate{testCandidate("a"), bad, testCandidate("a")})
	require.ErrorIs(t, err, ErrInvalidCandidate)
}

func TestNewEvent(t *testing.T) {
	key := GenerateIdempotencyKey("wf", "run", "screened", "c1")
	assert.Equal(t, key, GenerateIdempotencyKey("wf", "run", "screened", "c1"))

	env, err := NewEvent(EventTypeCandidateScreened, "analytical", "wf", "run", key, testTime,
		CandidateScreenedPayload{CandidateID: "c1", Domain: DomainThermal, Passed: true})
	require.NoError(t, err)
	assert.Equal(t, "CandidateScreened", env.Type)
	assert.Equal(t, "1.0.0", env.Version)
	assert.Equal(t, key, env.IdempotencyKey)

	again, err := NewEvent(EventTypeCandidateScreened, "analytical", "wf", "run", key, testTime,
		CandidateScreenedPayload{CandidateID: "c1", Domain: DomainThermal, Passed: true})
	require.NoError(t, err)
	assert.Equal(t, env.ID, again.ID, "same key yields same event id")

	_, err = NewEvent(EventTypeCandidateScreened, "analytical", "wf", "run", key, testTime,
		CandidateScreenedPayload{})
	require.Error(t, err, "payload without candidate id is rejected")
}
