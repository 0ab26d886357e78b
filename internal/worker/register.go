// Package worker wires the validation workflow and its activities onto a
// Temporal worker.
package worker

import (
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/oversight"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/workflow"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/activity"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// Registrar is the registration subset of a Temporal worker. The test
// workflow environment satisfies it too.
type Registrar interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

// Dependencies are the collaborators shared by every activity.
type Dependencies struct {
	Generator generation.Generator
	Validator *analytical.Validator
	Simulator numerical.Simulator
	Sink      events.EventSink
}

// RegisterAll registers the workflow and all activities. It must be called
// once, before the worker starts.
func RegisterAll(w Registrar, deps Dependencies) {
	sink := deps.Sink
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	base := activity.NewBaseActivities(sink)

	generationActivities := generation.NewActivities(base, deps.Generator)
	analyticalActivities := analytical.NewActivities(base, deps.Validator)
	numericalActivities := numerical.NewActivities(base, deps.Simulator)
	oversightActivities := oversight.NewActivities(base)

	w.RegisterWorkflow(workflow.ValidationWorkflow)

	w.RegisterActivity(generationActivities.GenerateCandidates)
	w.RegisterActivity(analyticalActivities.ValidateCandidates)
	w.RegisterActivity(numericalActivities.SimulateCandidates)
	w.RegisterActivity(numericalActivities.EstimateCosts)
	w.RegisterActivity(oversightActivities.AnalyzeBatch)
}
