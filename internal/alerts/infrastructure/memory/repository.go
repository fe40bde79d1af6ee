package memory

import (
	"context"
	"sync"
	"time"

	alerts "campus-energy/internal/alerts/domain"
)

// AlertRepository is an in-memory store for demo/testing.
type AlertRepository struct {
	mu      sync.RWMutex
	records []alerts.Alert
}

// NewAlertRepository constructs a repository.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{}
}

// Create stores one record.
func (r *AlertRepository) Create(ctx context.Context, alert alerts.Alert) error {
	_ = ctx
	if err := alert.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, alert)
	return nil
}

// GetByID fetches one record.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.records {
		if r.records[i].ID == id {
			record := r.records[i]
			return &record, nil
		}
	}
	return nil, alerts.ErrNotFound
}

// List returns the newest records first, optionally filtered by status.
func (r *AlertRepository) List(ctx context.Context, status string, limit int) ([]alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]alerts.Alert, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if status != "" && r.records[i].Status != status {
			continue
		}
		out = append(out, r.records[i])
	}
	return out, nil
}

// Acknowledge transitions one record to acknowledged.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID != id {
			continue
		}
		if r.records[i].Status == alerts.StatusAcknowledged {
			return alerts.ErrAlreadyAcknowledged
		}
		r.records[i].Status = alerts.StatusAcknowledged
		r.records[i].AckedAt = at
		return nil
	}
	return alerts.ErrNotFound
}
