package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	alerts "campus-energy/internal/alerts/domain"
)

const defaultAlertsTable = "alerts"

// AlertRepository is a Postgres repository for alert records.
type AlertRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*AlertRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *AlertRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(db *sql.DB, opts ...RepositoryOption) *AlertRepository {
	repo := &AlertRepository{db: db, table: defaultAlertsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Create inserts a new alert record.
func (r *AlertRepository) Create(ctx context.Context, alert alerts.Alert) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if err := alert.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, message, severity, ts, status, acked_at
) VALUES (
	$1, $2, $3, $4, $5, $6
)`, r.table)
	_, err := r.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.Message,
		alert.Severity,
		alert.Timestamp,
		alert.Status,
		nullableTime(alert.AckedAt),
	)
	return err
}

// GetByID fetches one record.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, message, severity, ts, status, acked_at
FROM %s
WHERE id = $1`, r.table)
	return scanAlert(r.db.QueryRowContext(ctx, query, id))
}

// List returns the newest records first, optionally filtered by status.
func (r *AlertRepository) List(ctx context.Context, status string, limit int) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
SELECT id, message, severity, ts, status, acked_at
FROM %s
WHERE ($1 = '' OR status = $1)
ORDER BY ts DESC
LIMIT $2`, r.table)

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alerts.Alert
	for rows.Next() {
		record, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, rows.Err()
}

// Acknowledge transitions an active record to acknowledged.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET status = $2, acked_at = $3
WHERE id = $1 AND status = $4`, r.table)
	result, err := r.db.ExecContext(ctx, query, id, alerts.StatusAcknowledged, at, alerts.StatusActive)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == alerts.StatusAcknowledged {
		return alerts.ErrAlreadyAcknowledged
	}
	return alerts.ErrNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*alerts.Alert, error) {
	var record alerts.Alert
	var ackedAt sql.NullTime
	if err := row.Scan(
		&record.ID,
		&record.Message,
		&record.Severity,
		&record.Timestamp,
		&record.Status,
		&ackedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, alerts.ErrNotFound
		}
		return nil, err
	}
	if ackedAt.Valid {
		record.AckedAt = ackedAt.Time
	}
	return &record, nil
}

func nullableTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}
