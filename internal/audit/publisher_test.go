package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPublisher_SyncMode(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink, testLogger())
	defer pub.Close()

	event := NewEvent(EventRequestCreated, time.Now().UTC())
	event.RequestID = "req-1"
	require.NoError(t, pub.Emit(context.Background(), event))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventRequestCreated, events[0].Kind)
	assert.Equal(t, "req-1", events[0].RequestID)
}

func TestPublisher_StampsMissingTimestamp(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink, testLogger())
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), Event{ID: "e", Kind: EventAnchorSubmitted}))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].At.IsZero())
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink, testLogger(), WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), NewEvent(EventPresentationResult, time.Now().UTC())))
	}

	require.NoError(t, pub.Close())
	assert.Len(t, sink.Events(), 10, "all buffered events should be drained on close")
}

func TestPublisher_EmitAfterCloseIsNoop(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink, testLogger(), WithAsyncBuffer(10))
	require.NoError(t, pub.Close())

	assert.NoError(t, pub.Emit(context.Background(), NewEvent(EventAnchorFailed, time.Now().UTC())))
	assert.Empty(t, sink.Events())
}
