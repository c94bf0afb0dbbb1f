package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cookstove_tracker/internal/models"

	"github.com/google/uuid"
)

// EventQuery narrows an activity log listing. Zero fields do not filter.
type EventQuery struct {
	From    time.Time
	To      time.Time
	Type    string
	StoveID string
	// Limit keeps only the newest Limit matches; they are still returned oldest first.
	Limit int
}

type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

const (
	insertEventSQL  = `INSERT INTO stove_events (id, occurred_at, type, stove_id, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	eventColumns    = `id, occurred_at, type, stove_id, message, meta`
	selectEventsSQL = `SELECT ` + eventColumns + ` FROM stove_events`
)

// Append stores one activity event. A missing id or timestamp is filled in;
// metadata that cannot be encoded is dropped.
func (r *EventRepository) Append(ctx context.Context, e models.ActivityEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = sql.NullString{String: string(b), Valid: true}
		}
	}
	stoveID := sql.NullString{String: e.StoveID, Valid: e.StoveID != ""}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestamp),
		e.Type,
		stoveID,
		e.Description,
		meta,
	)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", e.Type, err)
	}
	return nil
}

// List returns the events matching q, oldest first.
func (r *EventRepository) List(ctx context.Context, q EventQuery) ([]models.ActivityEvent, error) {
	where, args := q.where()

	query := selectEventsSQL + where + " ORDER BY occurred_at ASC"
	if q.Limit > 0 {
		query = `SELECT ` + eventColumns + ` FROM (` +
			selectEventsSQL + where + ` ORDER BY occurred_at DESC LIMIT ?` +
			`) ORDER BY occurred_at ASC`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]models.ActivityEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (q EventQuery) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !q.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.From.UTC().Format(sqliteTimestamp))
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, q.To.UTC().Format(sqliteTimestamp))
	}
	if q.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, q.Type)
	}
	if q.StoveID != "" {
		conds = append(conds, "stove_id = ?")
		args = append(args, q.StoveID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(rows *sql.Rows) (models.ActivityEvent, error) {
	var (
		ev      models.ActivityEvent
		stoveID sql.NullString
		meta    sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &stoveID, &ev.Description, &meta); err != nil {
		return models.ActivityEvent{}, fmt.Errorf("scan event: %w", err)
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	ev.StoveID = stoveID.String

	if meta.Valid && meta.String != "" {
		var v any
		if err := json.Unmarshal([]byte(meta.String), &v); err == nil {
			ev.Metadata = v
		} else {
			ev.Metadata = meta.String // kept raw when malformed
		}
	}
	return ev, nil
}
