package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cookstove_tracker/internal/models"
)

// sqliteTimestamp matches the format of CURRENT_TIMESTAMP.
const sqliteTimestamp = "2006-01-02 15:04:05"

type StoveRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewStoveRepository(db *sql.DB) *StoveRepository {
	return &StoveRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ StoveRepo = (*StoveRepository)(nil)

const (
	insertStoveSQL     = `INSERT INTO stoves (stove_id, model, pairing_code, status, created_at) VALUES (?, ?, ?, 'unpaired', ?)`
	selectStoveColumns = `SELECT id, stove_id, model, status, pairing_code, api_key, user_id, created_at FROM stoves`
	selectStoveByID    = selectStoveColumns + ` WHERE stove_id = ?`
	selectStoveByCode  = selectStoveColumns + ` WHERE stove_id = ? AND pairing_code = ?`
	selectStoveByKey   = selectStoveColumns + ` WHERE api_key = ? AND status = 'paired'`
	selectOwnedPaired  = selectStoveColumns + ` WHERE stove_id = ? AND user_id = ? AND status = 'paired'`
	selectByOwner      = selectStoveColumns + ` WHERE user_id = ?`
	selectPairedOwner  = selectStoveColumns + ` WHERE user_id = ? AND status = 'paired'`
	orderByCreated     = ` ORDER BY created_at ASC, id ASC`
	countPairedSQL     = `SELECT COUNT(*) FROM stoves WHERE status = 'paired'`

	pairStoveSQL = `UPDATE stoves SET user_id = ?, status = 'paired', pairing_code = NULL, api_key = ?
		WHERE stove_id = ? AND pairing_code = ? AND status = 'unpaired'`
)

// Create inserts an unpaired stove. A taken stove_id yields ErrDuplicate.
func (r *StoveRepository) Create(ctx context.Context, stoveID, model, pairingCode string) (models.Stove, error) {
	createdAt := r.now().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, insertStoveSQL, stoveID, model, pairingCode, createdAt.Format(sqliteTimestamp))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Stove{}, fmt.Errorf("insert stove %q: %w", stoveID, ErrDuplicate)
		}
		return models.Stove{}, fmt.Errorf("insert stove %q: %w", stoveID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Stove{}, fmt.Errorf("get last insert id for stove %q: %w", stoveID, err)
	}
	code := pairingCode
	return models.Stove{
		ID:          int(id),
		StoveID:     stoveID,
		Model:       model,
		Status:      models.StoveStatusUnpaired,
		PairingCode: &code,
		CreatedAt:   createdAt,
	}, nil
}

func (r *StoveRepository) GetByStoveID(ctx context.Context, stoveID string) (models.Stove, error) {
	s, err := scanStove(r.db.QueryRowContext(ctx, selectStoveByID, stoveID))
	if err != nil {
		return models.Stove{}, fmt.Errorf("select stove %q: %w", stoveID, err)
	}
	return s, nil
}

// GetByPairing matches stove_id and pairing code exactly (case-sensitive).
func (r *StoveRepository) GetByPairing(ctx context.Context, stoveID, pairingCode string) (models.Stove, error) {
	s, err := scanStove(r.db.QueryRowContext(ctx, selectStoveByCode, stoveID, pairingCode))
	if err != nil {
		return models.Stove{}, fmt.Errorf("select stove %q by pairing code: %w", stoveID, err)
	}
	return s, nil
}

func (r *StoveRepository) Pair(ctx context.Context, stoveID, pairingCode string, userID int, apiKey string) (bool, error) {
	res, err := r.db.ExecContext(ctx, pairStoveSQL, userID, apiKey, stoveID, pairingCode)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("pair stove %q: %w", stoveID, ErrDuplicate)
		}
		return false, fmt.Errorf("pair stove %q: %w", stoveID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected pairing stove %q: %w", stoveID, err)
	}
	return n == 1, nil
}

func (r *StoveRepository) GetPairedByAPIKey(ctx context.Context, apiKey string) (models.Stove, error) {
	s, err := scanStove(r.db.QueryRowContext(ctx, selectStoveByKey, apiKey))
	if err != nil {
		return models.Stove{}, fmt.Errorf("select stove by api key: %w", err)
	}
	return s, nil
}

func (r *StoveRepository) GetOwnedPaired(ctx context.Context, userID int, stoveID string) (models.Stove, error) {
	s, err := scanStove(r.db.QueryRowContext(ctx, selectOwnedPaired, stoveID, userID))
	if err != nil {
		return models.Stove{}, fmt.Errorf("select stove %q of user %d: %w", stoveID, userID, err)
	}
	return s, nil
}

// ListByOwner returns the stoves owned by userID, oldest first.
func (r *StoveRepository) ListByOwner(ctx context.Context, userID int, pairedOnly bool) ([]models.Stove, error) {
	q := selectByOwner
	if pairedOnly {
		q = selectPairedOwner
	}
	rows, err := r.db.QueryContext(ctx, q+orderByCreated, userID)
	if err != nil {
		return nil, fmt.Errorf("list stoves of user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Stove, 0, 4)
	for rows.Next() {
		s, err := scanStove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stove: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stoves of user %d: %w", userID, err)
	}
	return out, nil
}

func (r *StoveRepository) CountPaired(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countPairedSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count paired stoves: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStove(row rowScanner) (models.Stove, error) {
	var (
		s      models.Stove
		code   sql.NullString
		apiKey sql.NullString
		userID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.StoveID, &s.Model, &s.Status, &code, &apiKey, &userID, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stove{}, ErrNotFound
	}
	if err != nil {
		return models.Stove{}, err
	}
	if code.Valid {
		s.PairingCode = &code.String
	}
	if apiKey.Valid {
		s.APIKey = &apiKey.String
	}
	if userID.Valid {
		id := int(userID.Int64)
		s.UserID = &id
	}
	return s, nil
}
