package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchTransitions(t *testing.T) {
	records := NewValidationRecords([]Candidate{
		{ID: "a", Domain: DomainThermal, Parameters: map[string]float64{}},
		{ID: "b", Domain: DomainThermal, Parameters: map[string]float64{}},
		{ID: "c", Domain: DomainThermal, Parameters: map[string]float64{}},
	})

	require.ErrorIs(t, ApplyAnalyticalReports(records, nil), ErrBatchMismatch)
	require.NoError(t, ApplyAnalyticalReports(records, []AnalyticalReport{
		{CandidateID: "a", Passed: true},
		{CandidateID: "b", Passed: false},
		{CandidateID: "c", Passed: true},
	}))

	idx, pending := PendingNumerical(records)
	assert.Equal(t, []int{0, 2}, idx)
	require.Len(t, pending, 2)
	assert.Equal(t, "c", pending[1].ID)

	require.ErrorIs(t, ApplyNumericalReports(records, idx, nil), ErrBatchMismatch)
	require.NoError(t, ApplyNumericalReports(records, idx, []NumericalReport{
		{CandidateID: "a", Passed: true, Converged: true},
		{CandidateID: "c", Passed: false},
	}))

	FinalizeAll(records)
	assert.Equal(t, StatusPassedAll, records[0].FinalStatus)
	assert.Equal(t, StatusRejectedAnalytical, records[1].FinalStatus)
	assert.Equal(t, StatusRejectedNumerical, records[2].FinalStatus)

	require.NoError(t, ApplyMetaReports(records, []MetaReport{
		{CandidateID: "a", Passed: true},
		{CandidateID: "b", Passed: false},
		{CandidateID: "c", Passed: true},
	}, false))
	assert.Equal(t, StatusPassedAll, records[0].FinalStatus)
	assert.Equal(t, StatusRejectedAnalytical, records[1].FinalStatus, "prior rejection kept without override")

	require.Error(t, ApplyMetaReports(records, make([]MetaReport, 3), true), "meta applies once")
}

func TestApplyNumericalReports_IndexOutOfRange(t *testing.T) {
	records := NewValidationRecords([]Candidate{{ID: "a", Domain: DomainThermal, Parameters: map[string]float64{}}})
	err := ApplyNumericalReports(records, []int{3}, []NumericalReport{{}})
	require.ErrorIs(t, err, ErrBatchMismatch)
}
