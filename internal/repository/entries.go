package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/HydroPal/internal/models"
)

// PostgresEntryRepository implements tracking entry storage and aggregation
// against a PostgreSQL database.
type PostgresEntryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresEntryRepository creates a new PostgresEntryRepository using the provided *sql.DB.
func NewPostgresEntryRepository(db *sql.DB) *PostgresEntryRepository {
	return &PostgresEntryRepository{DB: db}
}

const entryColumns = `id, user_id, log_type, data, amount, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e       models.Entry
		logType string
		raw     []byte
	)
	if err := row.Scan(&e.ID, &e.UserID, &logType, &raw, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.LogType = models.LogType(logType)
	if err := json.Unmarshal(raw, &e.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &e, nil
}

// CreateEntry inserts e and fills in its timestamps.
func (r *PostgresEntryRepository) CreateEntry(ctx context.Context, e *models.Entry) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO entries (id, user_id, log_type, data, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, e.ID, e.UserID, string(e.LogType), raw, e.Amount).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateEntry: %w", err)
	}
	return nil
}

// ListEntries returns the user's entries newest first. An empty logType
// returns entries of every type.
func (r *PostgresEntryRepository) ListEntries(ctx context.Context, userID string, logType models.LogType) ([]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1`
	args := []any{userID}
	if logType != "" {
		query += ` AND log_type = $2`
		args = append(args, string(logType))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	return entries, nil
}

// ownerClause narrows a query on entry id ($1) to ownerID ($2) unless ownerID is empty.
func ownerClause(id, ownerID string) (string, []any) {
	if ownerID == "" {
		return `id = $1`, []any{id}
	}
	return `id = $1 AND user_id = $2`, []any{id, ownerID}
}

// GetEntry fetches an entry by id. A non-empty ownerID restricts the lookup
// to entries owned by that user.
func (r *PostgresEntryRepository) GetEntry(ctx context.Context, id, ownerID string) (*models.Entry, error) {
	where, args := ownerClause(id, ownerID)
	row := r.DB.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE `+where, args...)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetEntry: %w", err)
	}
	return e, nil
}

// UpdateEntryData replaces the payload and derived amount of an entry owned by ownerID.
func (r *PostgresEntryRepository) UpdateEntryData(ctx context.Context, id, ownerID string, data models.Data, amount float64) (*models.Entry, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	row := r.DB.QueryRowContext(ctx, `
		UPDATE entries SET data = $3, amount = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+entryColumns, id, ownerID, raw, amount)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("UpdateEntryData: %w", err)
	}
	return e, nil
}

// DeleteEntry removes an entry by id. A non-empty ownerID restricts the
// delete to entries owned by that user. It returns ErrNotFound when nothing
// was removed.
func (r *PostgresEntryRepository) DeleteEntry(ctx context.Context, id, ownerID string) error {
	where, args := ownerClause(id, ownerID)
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE `+where, args...)
	if err != nil {
		return fmt.Errorf("DeleteEntry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteEntry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SumAmount totals the derived amount of the user's entries of logType
// created in [from, to).
func (r *PostgresEntryRepository) SumAmount(ctx context.Context, userID string, logType models.LogType, from, to time.Time) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM entries
		WHERE user_id = $1 AND log_type = $2 AND created_at >= $3 AND created_at < $4
	`, userID, string(logType), from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("SumAmount: %w", err)
	}
	return total, nil
}

// DeleteRange removes the user's entries of logType created in [from, to)
// in a single statement and returns how many were removed.
func (r *PostgresEntryRepository) DeleteRange(ctx context.Context, userID string, logType models.LogType, from, to time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM entries
		WHERE user_id = $1 AND log_type = $2 AND created_at >= $3 AND created_at < $4
	`, userID, string(logType), from, to)
	if err != nil {
		return 0, fmt.Errorf("DeleteRange: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteRange: %w", err)
	}
	return n, nil
}

// Ranking sums entries of logType created in [from, to) per user, joins the
// user's name, and returns at most limit rows ordered by total descending,
// ties broken by user id.
func (r *PostgresEntryRepository) Ranking(ctx context.Context, logType models.LogType, from, to time.Time, limit int) ([]models.RankEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT e.user_id, u.name, SUM(e.amount) AS total_amount
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.log_type = $1 AND e.created_at >= $2 AND e.created_at < $3
		GROUP BY e.user_id, u.name
		ORDER BY total_amount DESC, e.user_id ASC
		LIMIT $4
	`, string(logType), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("Ranking: %w", err)
	}
	defer rows.Close()

	ranking := make([]models.RankEntry, 0, limit)
	for rows.Next() {
		var re models.RankEntry
		if err := rows.Scan(&re.UserID, &re.Name, &re.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ranking = append(ranking, re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Ranking: %w", err)
	}
	return ranking, nil
}

// MonthlyTotals sums the user's entries of logType created in [from, to)
// per calendar month as observed in the IANA timezone tz. The result maps
// month number (1..12) to total; months without entries are absent.
func (r *PostgresEntryRepository) MonthlyTotals(ctx context.Context, userID string, logType models.LogType, from, to time.Time, tz string) (map[int]float64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE $5)::int AS month, SUM(amount)
		FROM entries
		WHERE user_id = $1 AND log_type = $2 AND created_at >= $3 AND created_at < $4
		GROUP BY month
	`, userID, string(logType), from, to, tz)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTotals: %w", err)
	}
	defer rows.Close()

	totals := make(map[int]float64, 12)
	for rows.Next() {
		var (
			month int
			total float64
		)
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		totals[month] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MonthlyTotals: %w", err)
	}
	return totals, nil
}
