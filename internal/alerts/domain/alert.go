package alerts

import (
	"context"
	"errors"
	"time"
)

const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ErrNotFound indicates a missing alert record.
var ErrNotFound = errors.New("alerts: not found")

// ErrAlreadyAcknowledged indicates the record was acknowledged earlier.
var ErrAlreadyAcknowledged = errors.New("alerts: already acknowledged")

// Alert is one threshold-crossing record. Each evaluation tick may emit a
// fresh record even while a prior one for the same condition is still
// active; acknowledgement is the only mutation.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	AckedAt   time.Time `json:"acked_at,omitempty"`
}

// Validate checks record invariants.
func (a Alert) Validate() error {
	if a.ID == "" {
		return errors.New("alerts: empty id")
	}
	if a.Message == "" {
		return errors.New("alerts: empty message")
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return errors.New("alerts: invalid severity")
	}
	switch a.Status {
	case StatusActive, StatusAcknowledged:
	default:
		return errors.New("alerts: invalid status")
	}
	if a.Timestamp.IsZero() {
		return errors.New("alerts: zero timestamp")
	}
	return nil
}

// AlertRepository persists alert records.
type AlertRepository interface {
	Create(ctx context.Context, alert Alert) error
	GetByID(ctx context.Context, id string) (*Alert, error)
	List(ctx context.Context, status string, limit int) ([]Alert, error)
	Acknowledge(ctx context.Context, id string, at time.Time) error
}
