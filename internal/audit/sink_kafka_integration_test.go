//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"anchorid/internal/audit"
	"anchorid/pkg/testutil/containers"
)

func TestKafkaSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)
	const topic = "anchorid.audit.test"

	sink, err := audit.NewKafkaSink(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	event := audit.NewEvent(audit.EventRequestCreated, time.Now().UTC())
	event.RequestID = "req-1"
	event.ContextID = "ctx-1"
	require.NoError(t, sink.Append(ctx, event))

	// A second sink against the existing topic must not fail on creation.
	second, err := audit.NewKafkaSink(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "req-1", string(records[0].Key), "events must be keyed by request id")

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.ID, got.ID)
	require.Equal(t, audit.EventRequestCreated, got.Kind)
	require.Equal(t, "ctx-1", got.ContextID)
}
