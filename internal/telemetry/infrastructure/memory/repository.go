package memory

import (
	"context"
	"sync"

	telemetry "campus-energy/internal/telemetry/domain"
)

// EnergyLogRepository is an in-memory store for demo/testing.
type EnergyLogRepository struct {
	mu      sync.RWMutex
	entries []telemetry.EnergyLogEntry
}

// NewEnergyLogRepository constructs a repository.
func NewEnergyLogRepository() *EnergyLogRepository {
	return &EnergyLogRepository{}
}

// Append stores one entry.
func (r *EnergyLogRepository) Append(ctx context.Context, entry telemetry.EnergyLogEntry) error {
	_ = ctx
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of everything appended so far.
func (r *EnergyLogRepository) Entries() []telemetry.EnergyLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]telemetry.EnergyLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
