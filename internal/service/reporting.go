package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
	"cookstove_tracker/internal/usage"
)

// ReportingService serves the admin rollups and role management.
type ReportingService struct {
	reports  repository.ReportRepo
	users    repository.UserRepo
	activity activityRecorder
}

func NewReportingService(reports repository.ReportRepo, users repository.UserRepo, activity activityRecorder) *ReportingService {
	return &ReportingService{reports: reports, users: users, activity: activity}
}

func (s *ReportingService) GroupedUsage(ctx context.Context) (models.GroupedUsage, error) {
	rows, err := s.reports.UsageRows(ctx)
	if err != nil {
		return models.GroupedUsage{}, err
	}
	return usage.GroupByUser(rows), nil
}

func (s *ReportingService) UserRollups(ctx context.Context) ([]models.UserRollup, error) {
	rollups, err := s.reports.UserRollups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rollups {
		rollups[i].UsageSummary.TotalFuelUsed = usage.Round2(rollups[i].UsageSummary.TotalFuelUsed)
		if rollups[i].Stoves == nil {
			rollups[i].Stoves = []models.StoveBrief{}
		}
	}
	if rollups == nil {
		rollups = []models.UserRollup{}
	}
	return rollups, nil
}

func (s *ReportingService) StoveRollups(ctx context.Context) ([]models.StoveRollup, error) {
	rollups, err := s.reports.StoveRollups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rollups {
		rollups[i].UsageSummary.TotalFuelUsed = usage.Round2(rollups[i].UsageSummary.TotalFuelUsed)
	}
	if rollups == nil {
		rollups = []models.StoveRollup{}
	}
	return rollups, nil
}

// ChangeRole updates a user's role and returns the persisted record.
func (s *ReportingService) ChangeRole(ctx context.Context, userID int, role string) (models.User, error) {
	role = strings.TrimSpace(role)
	if !models.ValidRole(role) {
		return models.User{}, newError(ErrValidation, "role must be one of: user, admin")
	}

	err := s.users.UpdateRole(ctx, userID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, newError(ErrNotFound, "user not found")
	}
	if err != nil {
		return models.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, newError(ErrNotFound, "user not found")
	}
	if err != nil {
		return models.User{}, err
	}

	s.activity.Record(ctx, models.ActivityEvent{
		Type:        models.EventRoleChanged,
		Description: fmt.Sprintf("User %d role set to %s", u.ID, u.Role),
		Metadata:    map[string]any{"userId": u.ID, "role": u.Role},
	})
	return u, nil
}
