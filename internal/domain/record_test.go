package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidate(id string) Candidate {
	return Candidate{
		ID:          id,
		Description: "test candidate",
		Equation:    "Q = k * A * ΔT / L",
		Parameters:  map[string]float64{"k": 200, "A": 1, "ΔT": 50, "L": 0.1},
		Domain:      DomainThermal,
	}
}

func passingAnalytical(id string) AnalyticalReport {
	return AnalyticalReport{CandidateID: id, Passed: true, ChecksPerformed: AnalyticalChecks()}
}

func failingAnalytical(id string) AnalyticalReport {
	return AnalyticalReport{
		CandidateID:     id,
		Passed:          false,
		Violations:      []string{"Negative absolute temperature: T=-5"},
		ChecksPerformed: AnalyticalChecks(),
	}
}

func TestValidationRecord_AnalyticalFailureShortCircuits(t *testing.T) {
	r := NewValidationRecord(testCandidate("c1"))
	assert.Equal(t, StatusPending, r.FinalStatus)

	require.NoError(t, r.ApplyAnalytical(failingAnalytical("c1")))
	assert.Equal(t, StatusRejectedAnalytical, r.FinalStatus)
	assert.False(t, r.AnalyticalPassed)
	assert.False(t, r.NeedsNumerical(), "rejected record must skip simulation")

	err := r.ApplyNumerical(NumericalReport{CandidateID: "c1", Passed: true, Converged: true})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, r.NumericalPassed)

	r.Finalize()
	assert.Equal(t, StatusRejectedAnalytical, r.FinalStatus, "finalize never revives a rejection")
}

func TestValidationRecord_Finalize(t *testing.T) {
	tests := []struct {
		name      string
		numerical *NumericalReport
		want      Status
	}{
		{"analytical only", nil, StatusPassed},
		{"numerical passed", &NumericalReport{CandidateID: "c1", Passed: true, Converged: true}, StatusPassedAll},
		{"numerical failed", &NumericalReport{CandidateID: "c1", Passed: false}, StatusRejectedNumerical},
		{"simulator error", &NumericalReport{CandidateID: "c1", Passed: true, Error: "backend down"}, StatusRejectedNumerical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewValidationRecord(testCandidate("c1"))
			require.NoError(t, r.ApplyAnalytical(passingAnalytical("c1")))
			if tt.numerical != nil {
				require.True(t, r.NeedsNumerical())
				require.NoError(t, r.ApplyNumerical(*tt.numerical))
			}
			r.Finalize()
			assert.Equal(t, tt.want, r.FinalStatus)
		})
	}
}

func TestValidationRecord_ApplyMetaOverridePolicy(t *testing.T) {
	failingMeta := MetaReport{CandidateID: "c1", Passed: false, Recommendation: RecommendReject}

	tests := []struct {
		name          string
		analyticalOK  bool
		overridePrior bool
		want          Status
	}{
		{"override downgrades accepted", true, true, StatusRejectedMeta},
		{"override replaces prior rejection", false, true, StatusRejectedMeta},
		{"no override downgrades accepted", true, false, StatusRejectedMeta},
		{"no override keeps prior rejection", false, false, StatusRejectedAnalytical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewValidationRecord(testCandidate("c1"))
			if tt.analyticalOK {
				require.NoError(t, r.ApplyAnalytical(passingAnalytical("c1")))
			} else {
				require.NoError(t, r.ApplyAnalytical(failingAnalytical("c1")))
			}
			r.Finalize()

			require.NoError(t, r.ApplyMeta(failingMeta, tt.overridePrior))
			assert.Equal(t, tt.want, r.FinalStatus)
			require.NotNil(t, r.MetaPassed)
			assert.False(t, *r.MetaPassed)
			require.NotNil(t, r.Meta, "meta report is recorded even when status is kept")
		})
	}
}

func TestValidationRecord_ApplyMetaPassKeepsStatus(t *testing.T) {
	r := NewValidationRecord(testCandidate("c1"))
	require.NoError(t, r.ApplyAnalytical(failingAnalytical("c1")))
	require.NoError(t, r.ApplyMeta(MetaReport{CandidateID: "c1", Passed: true}, true))
	assert.Equal(t, StatusRejectedAnalytical, r.FinalStatus)
}

func TestValidationRecord_RejectsDuplicateAndForeignReports(t *testing.T) {
	r := NewValidationRecord(testCandidate("c1"))

	require.ErrorIs(t, r.ApplyAnalytical(passingAnalytical("other")), ErrInvalidTransition)
	require.NoError(t, r.ApplyAnalytical(passingAnalytical("c1")))
	require.ErrorIs(t, r.ApplyAnalytical(passingAnalytical("c1")), ErrInvalidTransition)

	require.NoError(t, r.ApplyMeta(MetaReport{CandidateID: "c1", Passed: true}, true))
	require.ErrorIs(t, r.ApplyMeta(MetaReport{CandidateID: "c1", Passed: true}, true), ErrInvalidTransition)
}

func TestNewValidationRecords_PreservesOrder(t *testing.T) {
	records := NewValidationRecords([]Candidate{testCandidate("a"), testCandidate("b"), testCandidate("c")})
	require.Len(t, records, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, records[i].Candidate.ID)
		assert.Equal(t, StatusPending, records[i].FinalStatus)
	}
}
