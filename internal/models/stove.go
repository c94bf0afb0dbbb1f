package models

import "time"

const (
	StoveStatusUnpaired = "unpaired"
	StoveStatusPaired   = "paired"
)

// Stove is a registered cookstove. PairingCode is set only while unpaired,
// APIKey and UserID only once paired.
type Stove struct {
	ID          int       `json:"id"`
	StoveID     string    `json:"stove_id"`
	Model       string    `json:"model"`
	Status      string    `json:"status"`
	PairingCode *string   `json:"pairing_code,omitempty"`
	APIKey      *string   `json:"-"`
	UserID      *int      `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PairedStove is returned once, when pairing succeeds.
type PairedStove struct {
	StoveID string `json:"stove_id"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// StoveRef identifies a stove in usage detail responses.
type StoveRef struct {
	StoveID string `json:"stove_id"`
	Model   string `json:"model"`
}
