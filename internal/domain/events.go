package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// EventType represents the type of event emitted by the pipeline.
type EventType string

const (
	// EventTypeCandidatesGenerated is emitted once per generated batch.
	EventTypeCandidatesGenerated EventType = "CandidatesGenerated"

	// EventTypeCandidateScreened is emitted per candidate after analytical checks.
	EventTypeCandidateScreened EventType = "CandidateScreened"

	// EventTypeCandidateSimulated is emitted per simulated candidate.
	EventTypeCandidateSimulated EventType = "CandidateSimulated"

	// EventTypeOversightCompleted is emitted once per batch after meta oversight.
	EventTypeOversightCompleted EventType = "OversightCompleted"

	// EventTypeRunCompleted is emitted once per run with the aggregate report.
	EventTypeRunCompleted EventType = "RunCompleted"
)

// eventVersion is the schema version of every payload below.
const eventVersion = "1.0.0"

// CandidatesGeneratedPayload describes a generated batch.
type CandidatesGeneratedPayload struct {
	Prompt       string   `json:"prompt" validate:"required"`
	Generator    string   `json:"generator" validate:"required"`
	Count        int      `json:"count" validate:"min=0"`
	CandidateIDs []string `json:"candidate_ids"`
}

// CandidateScreenedPayload carries the analytical verdict of one candidate.
type CandidateScreenedPayload struct {
	CandidateID  string   `json:"candidate_id" validate:"required"`
	Domain       Domain   `json:"domain"`
	Passed       bool     `json:"passed"`
	Violations   []string `json:"violations,omitempty"`
	WarningCount int      `json:"warning_count" validate:"min=0"`
}

// CandidateSimulatedPayload carries the numerical verdict of one candidate.
type CandidateSimulatedPayload struct {
	CandidateID string  `json:"candidate_id" validate:"required"`
	Passed      bool    `json:"passed"`
	Converged   bool    `json:"converged"`
	NodeCount   int     `json:"node_count" validate:"min=0"`
	CPUTimeSec  float64 `json:"cpu_time_sec" validate:"min=0"`
	Cached      bool    `json:"cached"`
	Error       string  `json:"error,omitempty"`
}

// OversightCompletedPayload summarises a meta oversight pass.
type OversightCompletedPayload struct {
	Total           int     `json:"total" validate:"min=0"`
	Approved        int     `json:"approved" validate:"min=0"`
	EnsembleScore   float64 `json:"ensemble_score"`
	MeanConsistency float64 `json:"mean_consistency"`
	MeanQuality     float64 `json:"mean_quality"`
}

// RunCompletedPayload carries the aggregate counters of a run.
type RunCompletedPayload struct {
	TotalGenerated       int     `json:"total_generated" validate:"min=0"`
	PassedAnalytical     int     `json:"passed_analytical" validate:"min=0"`
	PassedNumerical      int     `json:"passed_numerical" validate:"min=0"`
	PassedMeta           int     `json:"passed_meta" validate:"min=0"`
	FinalPassed          int     `json:"final_passed" validate:"min=0"`
	AnalyticalFilterRate float64 `json:"analytical_filter_rate"`
	FinalAcceptanceRate  float64 `json:"final_acceptance_rate"`
}

// NewRunCompletedPayload extracts the aggregate counters of a report.
func NewRunCompletedPayload(rep *PipelineReport) RunCompletedPayload {
	return RunCompletedPayload{
		TotalGenerated:       rep.TotalGenerated,
		PassedAnalytical:     rep.PassedAnalytical,
		PassedNumerical:      rep.PassedNumerical,
		PassedMeta:           rep.PassedMeta,
		FinalPassed:          rep.FinalPassed,
		AnalyticalFilterRate: rep.AnalyticalFilterRate,
		FinalAcceptanceRate:  rep.FinalAcceptanceRate,
	}
}

// GenerateIdempotencyKey creates a deterministic key for event deduplication.
// Retries and replays of the same logical event produce identical keys.
func GenerateIdempotencyKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// NewEvent builds an envelope for payload. The envelope ID is a name-based
// UUID of the idempotency key, so the same logical event always gets the same ID.
func NewEvent(
	eventType EventType,
	producer, workflowID, runID, idempotencyKey string,
	occurredAt time.Time,
	payload any,
) (events.Envelope, error) {
	if err := validate.Struct(payload); err != nil {
		return events.Envelope{}, fmt.Errorf("invalid %s payload: %w", eventType, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return events.Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return events.Envelope{
		ID:             uuid.NewSHA1(uuid.NameSpaceURL, []byte(idempotencyKey)).String(),
		Type:           string(eventType),
		Source:         producer,
		Version:        eventVersion,
		Timestamp:      occurredAt,
		IdempotencyKey: idempotencyKey,
		WorkflowID:     workflowID,
		RunID:          runID,
		Payload:        raw,
	}, nil
}
