package repository

import (
	"context"
	"database/sql"

	"cookstove_tracker/internal/models"
)

type UserRepo interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	UpdateRole(ctx context.Context, id int, role string) error
	Count(ctx context.Context) (int, error)
}

type StoveRepo interface {
	Create(ctx context.Context, stoveID, model, pairingCode string) (models.Stove, error)
	GetByStoveID(ctx context.Context, stoveID string) (models.Stove, error)
	GetByPairing(ctx context.Context, stoveID, pairingCode string) (models.Stove, error)
	// Pair transitions an unpaired stove in a single guarded UPDATE and reports
	// whether a row changed.
	Pair(ctx context.Context, stoveID, pairingCode string, userID int, apiKey string) (bool, error)
	GetPairedByAPIKey(ctx context.Context, apiKey string) (models.Stove, error)
	GetOwnedPaired(ctx context.Context, userID int, stoveID string) (models.Stove, error)
	ListByOwner(ctx context.Context, userID int, pairedOnly bool) ([]models.Stove, error)
	CountPaired(ctx context.Context) (int, error)
}

type UsageRepo interface {
	Append(ctx context.Context, r models.UsageRecord) (models.UsageRecord, error)
	// ListByStoves returns records ordered by date ASC, created_at ASC.
	ListByStoves(ctx context.Context, stoveIDs []string) ([]models.UsageRecord, error)
	// ListByStoveDesc returns records ordered by date DESC, created_at DESC.
	ListByStoveDesc(ctx context.Context, stoveID string) ([]models.UsageRecord, error)
	// ListInRange returns records with from <= date <= to; nil stoveIDs means every stove.
	ListInRange(ctx context.Context, stoveIDs []string, from, to string) ([]models.UsageRecord, error)
}

type ReportRepo interface {
	UsageRows(ctx context.Context) ([]models.UsageRow, error)
	UserRollups(ctx context.Context) ([]models.UserRollup, error)
	StoveRollups(ctx context.Context) ([]models.StoveRollup, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, q EventQuery) ([]models.ActivityEvent, error)
}

type Repository struct {
	Users   UserRepo
	Stoves  StoveRepo
	Usage   UsageRepo
	Reports ReportRepo
	Events  EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:   NewUserRepository(db),
		Stoves:  NewStoveRepository(db),
		Usage:   NewUsageRepository(db),
		Reports: NewReportRepository(db),
		Events:  NewEventRepository(db),
	}
}
