package models

import "time"

// DailyFuel is one point of the usage summary graph.
type DailyFuel struct {
	Date       string  `json:"date"`
	FuelUsedKg float64 `json:"fuelUsedKg"`
}

type UsageSummary struct {
	TotalFuelUsed      float64     `json:"totalFuelUsed"`
	AverageCookingTime int64       `json:"averageCookingTime"`
	DaysActive         int         `json:"daysActive"`
	Graph              []DailyFuel `json:"graph"`
}

// WeeklyStats is the 7-day view for a single user.
type WeeklyStats struct {
	TotalStoves             int       `json:"totalStoves"`
	AvgCookingTime          int64     `json:"avgCookingTime"`
	TotalFuelToday          float64   `json:"totalFuelToday"`
	TotalCookingEventsToday int64     `json:"totalCookingEventsToday"`
	FuelChartData           []float64 `json:"fuelChartData"`
	DateRange               []string  `json:"dateRange"`
}

// FleetStats is the 7-day view over every stove.
type FleetStats struct {
	TotalUsers              int       `json:"totalUsers"`
	ActiveStoves            int       `json:"activeStoves"`
	TotalFuelToday          float64   `json:"totalFuelToday"`
	TotalCookingEventsToday int64     `json:"totalCookingEventsToday"`
	FuelChartData           []float64 `json:"fuelChartData"`
	DateRange               []string  `json:"dateRange"`
}

// UsageTotals are database-level rollups; zero when a stove has no usage.
type UsageTotals struct {
	TotalFuelUsed      float64 `json:"totalFuelUsed"`
	TotalLogs          int64   `json:"totalLogs"`
	TotalCookingEvents int64   `json:"totalCookingEvents"`
	TotalMinutesUsed   int64   `json:"totalMinutesUsed"`
}

// UserRollupSummary adds the number of stoves to the per-user totals.
type UserRollupSummary struct {
	ActiveStoves int `json:"activeStoves"`
	UsageTotals
}

// StoveBrief is a stove listed under a user in the users rollup.
type StoveBrief struct {
	StoveID   string    `json:"stove_id"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UserRollup struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	CreatedAt    time.Time         `json:"createdAt"`
	Stoves       []StoveBrief      `json:"stoves"`
	UsageSummary UserRollupSummary `json:"usageSummary"`
}

type StoveRollup struct {
	ID           int         `json:"id"`
	StoveID      string      `json:"stoveId"`
	Model        string      `json:"model"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Owner        *UserRef    `json:"owner"`
	UsageSummary UsageTotals `json:"usageSummary"`
}

// UsageEntry is a usage record inside the grouped admin report.
type UsageEntry struct {
	ID            int       `json:"id"`
	Date          string    `json:"date"`
	CookingEvents int64     `json:"cooking_events"`
	TotalMinutes  int64     `json:"total_minutes"`
	FuelUsedKg    float64   `json:"fuel_used_kg"`
	CreatedAt     time.Time `json:"created_at"`
}

type StoveGroup struct {
	StoveID string       `json:"stove_id"`
	Model   string       `json:"model"`
	Usage   []UsageEntry `json:"usage"`
}

// GroupOwner is nil-able in ID and Email for the synthetic unpaired group.
type GroupOwner struct {
	ID    *int    `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type UserGroup struct {
	User   GroupOwner   `json:"user"`
	Stoves []StoveGroup `json:"stoves"`
}

type GroupedUsage struct {
	TotalRecords  int         `json:"total_records"`
	GroupedByUser []UserGroup `json:"grouped_by_user"`
}
