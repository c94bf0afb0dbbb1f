package service

import (
	"context"
	"errors"
	"time"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
	"cookstove_tracker/internal/usage"
)

const statsWindowDays = 7

// AggregationService computes the read-side views over usage records.
type AggregationService struct {
	stoves repository.StoveRepo
	usage  repository.UsageRepo
	users  repository.UserRepo
	now    func() time.Time
	loc    *time.Location
}

// NewAggregationService builds the service; "today" is evaluated in loc (UTC when nil).
func NewAggregationService(stoves repository.StoveRepo, usageRepo repository.UsageRepo, users repository.UserRepo, loc *time.Location) *AggregationService {
	if loc == nil {
		loc = time.UTC
	}
	return &AggregationService{stoves: stoves, usage: usageRepo, users: users, now: time.Now, loc: loc}
}

func (s *AggregationService) window() []usage.Day {
	return usage.Window(s.now().In(s.loc), statsWindowDays)
}

// UsageSummary covers the whole history of the user's paired stoves.
func (s *AggregationService) UsageSummary(ctx context.Context, userID int) (models.UsageSummary, error) {
	stoves, err := s.stoves.ListByOwner(ctx, userID, true)
	if err != nil {
		return models.UsageSummary{}, err
	}
	if len(stoves) == 0 {
		return models.UsageSummary{Graph: []models.DailyFuel{}}, nil
	}
	records, err := s.usage.ListByStoves(ctx, stoveIDs(stoves))
	if err != nil {
		return models.UsageSummary{}, err
	}
	return usage.Summarize(records), nil
}

// UserWeeklyStats is the 7-day chart over the user's stoves.
func (s *AggregationService) UserWeeklyStats(ctx context.Context, userID int) (models.WeeklyStats, error) {
	days := s.window()
	stoves, err := s.stoves.ListByOwner(ctx, userID, false)
	if err != nil {
		return models.WeeklyStats{}, err
	}

	var records []models.UsageRecord
	if len(stoves) > 0 {
		records, err = s.usage.ListInRange(ctx, stoveIDs(stoves), days[0].Date, days[len(days)-1].Date)
		if err != nil {
			return models.WeeklyStats{}, err
		}
	}

	chart := usage.WindowChart(records, days)
	return models.WeeklyStats{
		TotalStoves:             len(stoves),
		AvgCookingTime:          usage.RoundedRatio(chart.Totals.Minutes, chart.Totals.CookingEvents),
		TotalFuelToday:          chart.FuelToday,
		TotalCookingEventsToday: chart.CookingEventsToday,
		FuelChartData:           chart.FuelChartData,
		DateRange:               chart.DateRange,
	}, nil
}

// FleetStats is the 7-day chart over every stove.
func (s *AggregationService) FleetStats(ctx context.Context) (models.FleetStats, error) {
	days := s.window()
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return models.FleetStats{}, err
	}
	active, err := s.stoves.CountPaired(ctx)
	if err != nil {
		return models.FleetStats{}, err
	}
	records, err := s.usage.ListInRange(ctx, nil, days[0].Date, days[len(days)-1].Date)
	if err != nil {
		return models.FleetStats{}, err
	}

	chart := usage.WindowChart(records, days)
	return models.FleetStats{
		TotalUsers:              totalUsers,
		ActiveStoves:            active,
		TotalFuelToday:          chart.FuelToday,
		TotalCookingEventsToday: chart.CookingEventsToday,
		FuelChartData:           chart.FuelChartData,
		DateRange:               chart.DateRange,
	}, nil
}

// StoveUsage lists the records of one stove the caller owns, newest first.
func (s *AggregationService) StoveUsage(ctx context.Context, userID int, stoveID string) (models.StoveUsage, error) {
	stove, err := s.stoves.GetOwnedPaired(ctx, userID, stoveID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.StoveUsage{}, newError(ErrNotFound, "stove not found or not owned by user")
	}
	if err != nil {
		return models.StoveUsage{}, err
	}
	records, err := s.usage.ListByStoveDesc(ctx, stove.StoveID)
	if err != nil {
		return models.StoveUsage{}, err
	}
	if records == nil {
		records = []models.UsageRecord{}
	}
	return models.StoveUsage{
		Stove: models.StoveRef{StoveID: stove.StoveID, Model: stove.Model},
		Usage: records,
	}, nil
}

func stoveIDs(stoves []models.Stove) []string {
	ids := make([]string, len(stoves))
	for i, st := range stoves {
		ids[i] = st.StoveID
	}
	return ids
}
