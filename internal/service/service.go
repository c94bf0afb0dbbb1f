package service

import (
	"context"
	"time"

	"cookstove_tracker/internal/events"
	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, name, email, password string) (int, error)
	CreateUser(ctx context.Context, name, email, password, role string) (int, error)
	GenerateToken(ctx context.Context, email, password string) (string, models.User, error)
	ParseToken(accessToken string) (int, error)
	GetUser(ctx context.Context, id int) (models.User, error)
}

// Registry manages stove registration, pairing and API key resolution.
type Registry interface {
	RegisterStove(ctx context.Context, stoveID, model string) (models.Stove, error)
	PairStove(ctx context.Context, stoveID, pairingCode string, userID int) (models.PairedStove, error)
	ListUserStoves(ctx context.Context, userID int) ([]models.Stove, error)
	ResolveAPIKey(ctx context.Context, apiKey string) (models.Stove, error)
	GetStove(ctx context.Context, stoveID string) (models.Stove, error)
}

// Ingest accepts telemetry from stoves.
type Ingest interface {
	IngestAuthenticated(ctx context.Context, stove models.Stove, in UsageInput) (models.UsageRecord, error)
	IngestOpen(ctx context.Context, in UsageInput) (models.UsageRecord, error)
}

// Aggregation exposes per-user and fleet usage views.
type Aggregation interface {
	UsageSummary(ctx context.Context, userID int) (models.UsageSummary, error)
	UserWeeklyStats(ctx context.Context, userID int) (models.WeeklyStats, error)
	FleetStats(ctx context.Context) (models.FleetStats, error)
	StoveUsage(ctx context.Context, userID int, stoveID string) (models.StoveUsage, error)
}

// Reporting exposes the admin rollups.
type Reporting interface {
	GroupedUsage(ctx context.Context) (models.GroupedUsage, error)
	UserRollups(ctx context.Context) ([]models.UserRollup, error)
	StoveRollups(ctx context.Context) ([]models.StoveRollup, error)
	ChangeRole(ctx context.Context, userID int, role string) (models.User, error)
}

// ActivityLog exposes the append-only activity log with filtering access.
type ActivityLog interface {
	Record(ctx context.Context, e models.ActivityEvent)
	List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Registry
	Ingest
	Aggregation
	Reporting
	ActivityLog
}

// Deps carries the process-level collaborators of the services.
type Deps struct {
	Auth      AuthConfig
	Location  *time.Location // stats "today"; UTC when nil
	Publisher events.Publisher
	Log       *logger.Logger
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	activity := NewActivityService(repos.Events, deps.Publisher, deps.Log)
	return &Service{
		Authorization: NewAuthService(repos.Users, deps.Auth),
		Registry:      NewRegistryService(repos.Stoves, activity),
		Ingest:        NewIngestService(repos.Stoves, repos.Usage, activity),
		Aggregation:   NewAggregationService(repos.Stoves, repos.Usage, repos.Users, deps.Location),
		Reporting:     NewReportingService(repos.Reports, repos.Users, activity),
		ActivityLog:   activity,
	}
}
