package models

import "time"

// Activity event types appended by the registry, ingestor and admin reporting.
const (
	EventStoveRegistered = "STOVE_REGISTERED"
	EventStovePaired     = "STOVE_PAIRED"
	EventUsageRecorded   = "USAGE_RECORDED"
	EventRoleChanged     = "ROLE_CHANGED"
)

// ActivityEvent is a single entry of the append-only activity log.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`               // STOVE_REGISTERED | STOVE_PAIRED | USAGE_RECORDED | ROLE_CHANGED
	StoveID     string    `json:"stove_id,omitempty"` // empty for user-level events
	Description string    `json:"description"`        // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
