package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	telemetry "campus-energy/internal/telemetry/domain"
)

const defaultEnergyLogsTable = "energy_logs"

// EnergyLogRepository is a Postgres implementation of the energy log store.
type EnergyLogRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*EnergyLogRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *EnergyLogRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewEnergyLogRepository constructs a repository with the default table.
func NewEnergyLogRepository(db *sql.DB, opts ...RepositoryOption) *EnergyLogRepository {
	repo := &EnergyLogRepository{db: db, table: defaultEnergyLogsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Append inserts one entry. Entries are append-only; there is no conflict
// target because (timestamp, tenant) pairs repeat only if the clock does.
func (r *EnergyLogRepository) Append(ctx context.Context, entry telemetry.EnergyLogEntry) error {
	if r == nil || r.db == nil {
		return errors.New("energy log repo: nil db")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	ts,
	energy_generated_kw,
	energy_used_kw,
	battery_level,
	tenant_id
) VALUES (
	$1, $2, $3, $4, $5
)`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.Timestamp,
		entry.EnergyGeneratedKW,
		entry.EnergyUsedKW,
		entry.BatteryLevelPercent,
		entry.TenantID,
	)
	return err
}
