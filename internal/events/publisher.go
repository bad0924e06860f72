// Package events handles publishing events to NATS
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// RateLimitedEvent is emitted when a client is turned away by the rate limiter
type RateLimitedEvent struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Limit      int       `json:"limit"`
	ResetAt    time.Time `json:"reset_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher defines the interface for publishing events
type Publisher interface {
	RateLimited(ctx context.Context, event *RateLimitedEvent) error
}

// NATSPublisher implements Publisher on a core NATS connection
type NATSPublisher struct {
	nc *nats.Conn
}

// NewPublisher creates a new NATSPublisher instance
func NewPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, data)
}

// RateLimited publishes a rate limit denial. Missing ID and OccurredAt are
// filled in.
func (p *NATSPublisher) RateLimited(_ context.Context, event *RateLimitedEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return p.publish(RateLimited, event)
}

// NopPublisher discards every event; used when NATS is not configured
type NopPublisher struct{}

// RateLimited implements Publisher
func (NopPublisher) RateLimited(context.Context, *RateLimitedEvent) error {
	return nil
}
