package telemetry

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidEntry indicates a log entry missing required fields.
var ErrInvalidEntry = errors.New("energy log: invalid entry")

// EnergyLogEntry is one per-tenant aggregate derived from a snapshot.
// Entries are append-only; the core never updates or deletes them.
type EnergyLogEntry struct {
	Timestamp           time.Time
	EnergyGeneratedKW   float64
	EnergyUsedKW        float64
	BatteryLevelPercent float64
	TenantID            string
}

// Validate checks entry invariants.
func (e EnergyLogEntry) Validate() error {
	if e.TenantID == "" || e.Timestamp.IsZero() {
		return ErrInvalidEntry
	}
	return nil
}

// EnergyLogRepository appends energy log entries.
type EnergyLogRepository interface {
	Append(ctx context.Context, entry EnergyLogEntry) error
}
