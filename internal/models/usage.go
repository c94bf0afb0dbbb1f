package models

import "time"

// UsageRecord is one immutable telemetry submission for a stove on a calendar day.
// Date is always formatted as YYYY-MM-DD.
type UsageRecord struct {
	ID            int       `json:"id"`
	StoveID       string    `json:"stove_id"`
	Date          string    `json:"date"`
	CookingEvents int64     `json:"cooking_events"`
	TotalMinutes  int64     `json:"total_minutes"`
	FuelUsedKg    float64   `json:"fuel_used_kg"`
	CreatedAt     time.Time `json:"created_at"`
}

// UsageRow is a usage record flattened with its stove and owner, as read for
// the admin grouped report. Stove and owner columns are nil when absent.
type UsageRow struct {
	UsageRecord
	StoveModel *string
	OwnerID    *int
	OwnerName  *string
	OwnerEmail *string
}

// StoveUsage is the usage history of a single owned stove.
type StoveUsage struct {
	Stove StoveRef      `json:"stove"`
	Usage []UsageRecord `json:"usage"`
}
