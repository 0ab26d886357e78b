package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_DeduplicatesByIdempotencyKey(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, Envelope{ID: "1", Type: "A", IdempotencyKey: "k1"}))
	require.NoError(t, sink.Append(ctx, Envelope{ID: "1", Type: "A", IdempotencyKey: "k1"}))
	require.NoError(t, sink.Append(ctx, Envelope{ID: "2", Type: "B", IdempotencyKey: "k2"}))
	require.NoError(t, sink.Append(ctx, Envelope{ID: "3", Type: "A"}))
	require.NoError(t, sink.Append(ctx, Envelope{ID: "4", Type: "A"}))

	assert.Len(t, sink.Events(), 4, "events without a key are never deduplicated")
	assert.Len(t, sink.OfType("A"), 3)
	assert.Len(t, sink.OfType("B"), 1)
}

func TestMemorySink_RejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewMemorySink().Append(ctx, Envelope{ID: "1"}), context.Canceled)
}

func TestMemorySink_EventsReturnsCopy(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Append(context.Background(), Envelope{ID: "1", Type: "A"}))

	got := sink.Events()
	got[0].Type = "mutated"
	assert.Equal(t, "A", sink.Events()[0].Type)
}

func TestNoOpEventSink(t *testing.T) {
	require.NoError(t, NewNoOpEventSink().Append(context.Background(), Envelope{}))
}
