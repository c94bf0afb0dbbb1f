package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
	"cookstove_tracker/internal/usage"
)

// IngestService appends telemetry submitted by stoves.
type IngestService struct {
	stoves   repository.StoveRepo
	usage    repository.UsageRepo
	activity activityRecorder
}

func NewIngestService(stoves repository.StoveRepo, usageRepo repository.UsageRepo, activity activityRecorder) *IngestService {
	return &IngestService{stoves: stoves, usage: usageRepo, activity: activity}
}

// IngestAuthenticated appends a record for the stove resolved from its API key.
// The body must name that same stove.
func (s *IngestService) IngestAuthenticated(ctx context.Context, stove models.Stove, in UsageInput) (models.UsageRecord, error) {
	rec, err := validateUsage(in)
	if err != nil {
		return models.UsageRecord{}, err
	}
	if rec.StoveID != stove.StoveID {
		return models.UsageRecord{}, newError(ErrForbidden, "stove ID mismatch")
	}
	return s.append(ctx, rec, "authenticated")
}

// IngestOpen appends a record for any registered stove without credentials.
func (s *IngestService) IngestOpen(ctx context.Context, in UsageInput) (models.UsageRecord, error) {
	rec, err := validateUsage(in)
	if err != nil {
		return models.UsageRecord{}, err
	}
	_, err = s.stoves.GetByStoveID(ctx, rec.StoveID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.UsageRecord{}, newError(ErrNotFound, "stove not found")
	}
	if err != nil {
		return models.UsageRecord{}, err
	}
	return s.append(ctx, rec, "open")
}

func (s *IngestService) append(ctx context.Context, rec models.UsageRecord, path string) (models.UsageRecord, error) {
	saved, err := s.usage.Append(ctx, rec)
	if err != nil {
		return models.UsageRecord{}, err
	}
	s.activity.Record(ctx, models.ActivityEvent{
		OccurredAt:  saved.CreatedAt,
		Type:        models.EventUsageRecorded,
		StoveID:     saved.StoveID,
		Description: fmt.Sprintf("Usage recorded for stove %s on %s", saved.StoveID, saved.Date),
		Metadata: map[string]any{
			"date":       saved.Date,
			"fuelUsedKg": saved.FuelUsedKg,
			"path":       path,
		},
	})
	return saved, nil
}

// validateUsage checks a submission and returns the record to store.
// Fuel is rounded to 2dp before the range rule applies.
func validateUsage(in UsageInput) (models.UsageRecord, error) {
	if in.FuelUsedKg != nil {
		fuel := *in.FuelUsedKg
		if math.IsNaN(fuel) || math.IsInf(fuel, 0) {
			return models.UsageRecord{}, newError(ErrValidation, "fuelUsedKg must be a finite number")
		}
		fuel = usage.Round2(fuel)
		in.FuelUsedKg = &fuel
	}
	if err := checkStruct(in); err != nil {
		return models.UsageRecord{}, err
	}
	date, err := usage.ParseDate(*in.Date)
	if err != nil {
		return models.UsageRecord{}, newError(ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	return models.UsageRecord{
		StoveID:       strings.TrimSpace(*in.StoveID),
		Date:          date,
		CookingEvents: *in.CookingEvents,
		TotalMinutes:  *in.TotalMinutes,
		FuelUsedKg:    *in.FuelUsedKg,
	}, nil
}
