package service

import "time"

// UsageInput is a telemetry submission before validation. Nil fields are missing.
type UsageInput struct {
	StoveID       *string  `json:"stoveId" validate:"required,notblank"`
	Date          *string  `json:"date" validate:"required,notblank"` // YYYY-MM-DD or RFC3339
	CookingEvents *int64   `json:"cookingEvents" validate:"required,gte=0"`
	TotalMinutes  *int64   `json:"totalMinutes" validate:"required,gte=0"`
	FuelUsedKg    *float64 `json:"fuelUsedKg" validate:"required,gte=0,lte=999.99"`
}

// LogFilter supports activity filtering by time range, type and stove.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "STOVE_REGISTERED", "STOVE_PAIRED", "USAGE_RECORDED", "ROLE_CHANGED"
	StoveID string    `json:"stoveId" validate:"max=50"`
	// Limit keeps the newest N matches; 0 means all.
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// AuthConfig holds the token and password hashing settings.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
	BcryptCost int
}
