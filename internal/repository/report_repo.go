package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cookstove_tracker/internal/models"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ ReportRepo = (*ReportRepository)(nil)

// usageTotalsByStove is the per-stove rollup joined into the roster queries.
const usageTotalsByStove = `(SELECT stove_id,
		SUM(fuel_used_kg) AS fuel, COUNT(id) AS logs, SUM(cooking_events) AS events, SUM(total_minutes) AS minutes
		FROM stove_usage GROUP BY stove_id) t`

const (
	selectUsageRowsSQL = `SELECT u.id, u.stove_id, u.usage_date, u.cooking_events, u.total_minutes, u.fuel_used_kg, u.created_at,
		s.model, o.id, o.name, o.email
		FROM stove_usage u
		LEFT JOIN stoves s ON s.stove_id = u.stove_id
		LEFT JOIN users o ON o.id = s.user_id
		ORDER BY u.usage_date DESC, u.created_at DESC, u.id DESC`

	selectUserRollupsSQL = `SELECT o.id, o.name, o.email, o.role, o.created_at,
		s.stove_id, s.model, s.status, s.created_at,
		COALESCE(t.fuel, 0), COALESCE(t.logs, 0), COALESCE(t.events, 0), COALESCE(t.minutes, 0)
		FROM users o
		LEFT JOIN stoves s ON s.user_id = o.id
		LEFT JOIN ` + usageTotalsByStove + ` ON t.stove_id = s.stove_id
		ORDER BY o.created_at DESC, o.id DESC, s.created_at ASC, s.id ASC`

	selectStoveRollupsSQL = `SELECT s.id, s.stove_id, s.model, s.status, s.created_at,
		o.id, o.name, o.email,
		COALESCE(t.fuel, 0), COALESCE(t.logs, 0), COALESCE(t.events, 0), COALESCE(t.minutes, 0)
		FROM stoves s
		LEFT JOIN users o ON o.id = s.user_id
		LEFT JOIN ` + usageTotalsByStove + ` ON t.stove_id = s.stove_id
		ORDER BY s.created_at DESC, s.id DESC`
)

// UsageRows returns every usage record joined with its stove and owner,
// newest first. Stove and owner columns are nil when the join misses.
func (r *ReportRepository) UsageRows(ctx context.Context) ([]models.UsageRow, error) {
	rows, err := r.db.QueryContext(ctx, selectUsageRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("query usage rows: %w", err)
	}
	defer rows.Close()

	out := make([]models.UsageRow, 0, 64)
	for rows.Next() {
		var (
			row        models.UsageRow
			model      sql.NullString
			ownerID    sql.NullInt64
			ownerName  sql.NullString
			ownerEmail sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.StoveID, &row.Date, &row.CookingEvents, &row.TotalMinutes, &row.FuelUsedKg, &row.CreatedAt,
			&model, &ownerID, &ownerName, &ownerEmail,
		); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		row.StoveModel = nullString(model)
		row.OwnerName = nullString(ownerName)
		row.OwnerEmail = nullString(ownerEmail)
		if ownerID.Valid {
			id := int(ownerID.Int64)
			row.OwnerID = &id
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}
	return out, nil
}

// UserRollups reads one row per (user, stove) and folds them per user.
// Fuel totals are returned unrounded.
func (r *ReportRepository) UserRollups(ctx context.Context) ([]models.UserRollup, error) {
	rows, err := r.db.QueryContext(ctx, selectUserRollupsSQL)
	if err != nil {
		return nil, fmt.Errorf("query user rollups: %w", err)
	}
	defer rows.Close()

	out := make([]models.UserRollup, 0, 16)
	for rows.Next() {
		var (
			u            models.UserRollup
			stoveID      sql.NullString
			stoveModel   sql.NullString
			stoveStatus  sql.NullString
			stoveCreated sql.NullTime
			totals       models.UsageTotals
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
			&stoveID, &stoveModel, &stoveStatus, &stoveCreated,
			&totals.TotalFuelUsed, &totals.TotalLogs, &totals.TotalCookingEvents, &totals.TotalMinutesUsed,
		); err != nil {
			return nil, fmt.Errorf("scan user rollup: %w", err)
		}

		if n := len(out); n == 0 || out[n-1].ID != u.ID {
			u.Stoves = []models.StoveBrief{}
			out = append(out, u)
		}
		cur := &out[len(out)-1]
		if !stoveID.Valid {
			continue
		}
		cur.Stoves = append(cur.Stoves, models.StoveBrief{
			StoveID:   stoveID.String,
			Model:     stoveModel.String,
			Status:    stoveStatus.String,
			CreatedAt: stoveCreated.Time,
		})
		if stoveStatus.String == models.StoveStatusPaired {
			cur.UsageSummary.ActiveStoves++
		}
		cur.UsageSummary.TotalFuelUsed += totals.TotalFuelUsed
		cur.UsageSummary.TotalLogs += totals.TotalLogs
		cur.UsageSummary.TotalCookingEvents += totals.TotalCookingEvents
		cur.UsageSummary.TotalMinutesUsed += totals.TotalMinutesUsed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rollups: %w", err)
	}
	return out, nil
}

// StoveRollups returns every stove with its owner and usage totals, newest first.
func (r *ReportRepository) StoveRollups(ctx context.Context) ([]models.StoveRollup, error) {
	rows, err := r.db.QueryContext(ctx, selectStoveRollupsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stove rollups: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoveRollup, 0, 16)
	for rows.Next() {
		var (
			s          models.StoveRollup
			ownerID    sql.NullInt64
			ownerName  sql.NullString
			ownerEmail sql.NullString
		)
		if err := rows.Scan(
			&s.ID, &s.StoveID, &s.Model, &s.Status, &s.CreatedAt,
			&ownerID, &ownerName, &ownerEmail,
			&s.UsageSummary.TotalFuelUsed, &s.UsageSummary.TotalLogs,
			&s.UsageSummary.TotalCookingEvents, &s.UsageSummary.TotalMinutesUsed,
		); err != nil {
			return nil, fmt.Errorf("scan stove rollup: %w", err)
		}
		if ownerID.Valid {
			s.Owner = &models.UserRef{ID: int(ownerID.Int64), Name: ownerName.String, Email: ownerEmail.String}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stove rollups: %w", err)
	}
	return out, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
