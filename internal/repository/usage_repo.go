package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cookstove_tracker/internal/models"
)

type UsageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ UsageRepo = (*UsageRepository)(nil)

const (
	insertUsageSQL = `INSERT INTO stove_usage (stove_id, usage_date, cooking_events, total_minutes, fuel_used_kg, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	selectUsageColumns = `SELECT id, stove_id, usage_date, cooking_events, total_minutes, fuel_used_kg, created_at FROM stove_usage`
	usageOrderAsc      = ` ORDER BY usage_date ASC, created_at ASC, id ASC`
	usageOrderDesc     = ` ORDER BY usage_date DESC, created_at DESC, id DESC`
	selectUsageByStove = selectUsageColumns + ` WHERE stove_id = ?` + usageOrderDesc
)

// Append inserts a new record; same-day records are never merged.
func (r *UsageRepository) Append(ctx context.Context, rec models.UsageRecord) (models.UsageRecord, error) {
	rec.CreatedAt = r.now().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, insertUsageSQL,
		rec.StoveID,
		rec.Date,
		rec.CookingEvents,
		rec.TotalMinutes,
		rec.FuelUsedKg,
		rec.CreatedAt.Format(sqliteTimestamp),
	)
	if err != nil {
		return models.UsageRecord{}, fmt.Errorf("insert usage for stove %q: %w", rec.StoveID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.UsageRecord{}, fmt.Errorf("get last insert id for usage of stove %q: %w", rec.StoveID, err)
	}
	rec.ID = int(id)
	return rec, nil
}

func (r *UsageRepository) ListByStoves(ctx context.Context, stoveIDs []string) ([]models.UsageRecord, error) {
	if len(stoveIDs) == 0 {
		return []models.UsageRecord{}, nil
	}
	q := selectUsageColumns + ` WHERE stove_id IN (` + placeholders(len(stoveIDs)) + `)` + usageOrderAsc
	return r.query(ctx, q, stringArgs(stoveIDs)...)
}

func (r *UsageRepository) ListByStoveDesc(ctx context.Context, stoveID string) ([]models.UsageRecord, error) {
	return r.query(ctx, selectUsageByStove, stoveID)
}

func (r *UsageRepository) ListInRange(ctx context.Context, stoveIDs []string, from, to string) ([]models.UsageRecord, error) {
	conds := []string{"usage_date >= ?", "usage_date <= ?"}
	args := []any{from, to}
	if stoveIDs != nil {
		if len(stoveIDs) == 0 {
			return []models.UsageRecord{}, nil
		}
		conds = append(conds, "stove_id IN ("+placeholders(len(stoveIDs))+")")
		args = append(args, stringArgs(stoveIDs)...)
	}
	q := selectUsageColumns + " WHERE " + strings.Join(conds, " AND ") + usageOrderAsc
	return r.query(ctx, q, args...)
}

func (r *UsageRepository) query(ctx context.Context, q string, args ...any) ([]models.UsageRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	out := make([]models.UsageRecord, 0, 32)
	for rows.Next() {
		var u models.UsageRecord
		if err := rows.Scan(&u.ID, &u.StoveID, &u.Date, &u.CookingEvents, &u.TotalMinutes, &u.FuelUsedKg, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
