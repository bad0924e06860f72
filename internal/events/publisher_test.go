package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startNATS runs an in-process NATS server on a random port
func startNATS(t *testing.T) *nats.Conn {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()
	require.True(t, ns.ReadyForConnections(10*time.Second))
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	return nc
}

func TestNATSPublisherRateLimited(t *testing.T) {
	nc := startNATS(t)

	sub, err := nc.SubscribeSync(RateLimited)
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	resetAt := time.Date(2024, 5, 10, 9, 16, 0, 0, time.UTC)
	publisher := NewPublisher(nc)
	err = publisher.RateLimited(context.Background(), &RateLimitedEvent{
		ClientID: "1.2.3.4",
		Method:   "GET",
		Path:     "/api/formats",
		Limit:    100,
		ResetAt:  resetAt,
	})
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var got RateLimitedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err, "event id should be a UUID")
	assert.Equal(t, "1.2.3.4", got.ClientID)
	assert.Equal(t, "GET", got.Method)
	assert.Equal(t, "/api/formats", got.Path)
	assert.Equal(t, 100, got.Limit)
	assert.True(t, resetAt.Equal(got.ResetAt))
	assert.False(t, got.OccurredAt.IsZero())
}

func TestNATSPublisherKeepsProvidedID(t *testing.T) {
	nc := startNATS(t)

	sub, err := nc.SubscribeSync(RateLimited)
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	err = NewPublisher(nc).RateLimited(context.Background(), &RateLimitedEvent{
		ID:       "fixed-id",
		ClientID: "unknown",
	})
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), `"id":"fixed-id"`)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.RateLimited(context.Background(), &RateLimitedEvent{}))
}
