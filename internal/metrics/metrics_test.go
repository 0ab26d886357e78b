package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStageOutcome(t *testing.T) {
	passedBefore := testutil.ToFloat64(stageCandidates.WithLabelValues("test_stage", OutcomePassed))
	failedBefore := testutil.ToFloat64(stageCandidates.WithLabelValues("test_stage", OutcomeFailed))

	RecordStageOutcome("test_stage", 3, 2)

	assert.InDelta(t, passedBefore+3, testutil.ToFloat64(stageCandidates.WithLabelValues("test_stage", OutcomePassed)), 0)
	assert.InDelta(t, failedBefore+2, testutil.ToFloat64(stageCandidates.WithLabelValues("test_stage", OutcomeFailed)), 0)
}

func TestRecordRun(t *testing.T) {
	okBefore := testutil.ToFloat64(runs.WithLabelValues(OutcomePassed))
	errBefore := testutil.ToFloat64(runs.WithLabelValues(OutcomeError))

	RecordRun(nil, 0.5)
	RecordRun(errors.New("boom"), 0)

	assert.InDelta(t, okBefore+1, testutil.ToFloat64(runs.WithLabelValues(OutcomePassed)), 0)
	assert.InDelta(t, errBefore+1, testutil.ToFloat64(runs.WithLabelValues(OutcomeError)), 0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordViolation("Negative absolute temperature")
	RecordSimulatorCall("mock", OutcomeCached)
	ObserveStageDuration(StageMeta, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"shf_analytical_violations_total",
		"shf_numerical_simulator_calls_total",
		"shf_stage_duration_seconds",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
