package oversight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

func TestAnalyzeBatchActivity(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}

	t.Run("analyzes batch and emits summary event", func(t *testing.T) {
		env := testSuite.NewTestActivityEnvironment()
		sink := events.NewMemorySink()
		acts := NewActivities(activity.NewBaseActivities(sink))
		env.RegisterActivity(acts.AnalyzeBatch)

		input := domain.AnalyzeBatchInput{
			Records: []domain.ValidationRecord{
				record(t, "a", domain.DomainThermal, map[string]float64{"k": 1}),
				record(t, "b", domain.DomainThermal, map[string]float64{"k": 100}),
			},
			ConsistencyThreshold: 0.8,
		}
		val, err := env.ExecuteActivity(acts.AnalyzeBatch, input)
		require.NoError(t, err)

		var out *domain.AnalyzeBatchOutput
		require.NoError(t, val.Get(&out))
		require.Len(t, out.Reports, 2)
		assert.False(t, out.Reports[0].Passed)
		assert.Equal(t, 2, out.Stats.MetaAnalyses)

		emitted := sink.OfType(string(domain.EventTypeOversightCompleted))
		require.Len(t, emitted, 1)
		var payload domain.OversightCompletedPayload
		require.NoError(t, json.Unmarshal(emitted[0].Payload, &payload))
		assert.Equal(t, 2, payload.Total)
		assert.Zero(t, payload.Approved)
	})

	t.Run("threshold out of range is non-retryable", func(t *testing.T) {
		env := testSuite.NewTestActivityEnvironment()
		acts := NewActivities(activity.NewBaseActivities(nil))
		env.RegisterActivity(acts.AnalyzeBatch)

		_, err := env.ExecuteActivity(acts.AnalyzeBatch, domain.AnalyzeBatchInput{ConsistencyThreshold: 2})
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.True(t, appErr.NonRetryable())
	})
}
