// Package events publishes stove lifecycle events to a message broker.
package events

import (
	"context"
	"strings"
	"time"
)

// Event is the broker message body.
type Event struct {
	ID          string    `json:"event_id"`
	Type        string    `json:"type"`
	StoveID     string    `json:"stove_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	Data        any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// RoutingKey maps an event type to its topic key: STOVE_PAIRED -> stove.paired.
func RoutingKey(eventType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(eventType)), "_", ".")
}
