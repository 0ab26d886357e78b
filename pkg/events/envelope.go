// Package events provides the generic event infrastructure for pipeline event emission.
// It defines the Envelope type for wrapping stage events with consistent metadata
// and the EventSink interface for event storage and transmission.
package events

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// Envelope wraps stage events with consistent metadata for reliable event processing.
// It carries any event payload while keeping standard fields for routing,
// idempotency and run correlation.
type Envelope struct {
	// ID uniquely identifies this event instance.
	// Derived from the idempotency key so retries produce the same ID.
	ID string `json:"id"`

	// Type identifies the event for routing and processing.
	// Examples: "CandidateScreened", "RunCompleted".
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	// Examples: "analytical-activity", "pipeline".
	Source string `json:"source"`

	// Version enables schema evolution. Starts at "1.0.0".
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey ensures exactly-once processing during retries.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID identifies the Temporal workflow or in-process run that
	// triggered this event.
	WorkflowID string `json:"workflow_id"`

	// RunID identifies the specific pipeline execution.
	RunID string `json:"run_id"`

	// Payload contains the event data as JSON. Schema varies by Type and Version.
	Payload json.RawMessage `json:"payload"`
}

// EventSink defines the interface for emitting events to downstream consumers.
// Implementations include the SQLite outbox and the in-memory sink used by tests.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	// Implementations treat a repeated idempotency key as a no-op.
	//
	// Callers must not fail their primary operation when Append fails.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink is a null implementation of EventSink for when events are disabled.
type NoOpEventSink struct{}

// Append implements EventSink.Append with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}

// MemorySink keeps events in memory, deduplicated by idempotency key.
// It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	events []Envelope
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{seen: make(map[string]struct{})}
}

// Append implements EventSink.
func (m *MemorySink) Append(ctx context.Context, envelope Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if envelope.IdempotencyKey != "" {
		if _, dup := m.seen[envelope.IdempotencyKey]; dup {
			return nil
		}
		m.seen[envelope.IdempotencyKey] = struct{}{}
	}
	m.events = append(m.events, envelope)
	return nil
}

// Events returns a copy of the stored events in append order.
func (m *MemorySink) Events() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// OfType returns the stored events whose Type equals eventType.
func (m *MemorySink) OfType(eventType string) []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Envelope
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
