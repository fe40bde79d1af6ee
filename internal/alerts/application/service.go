package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	alerts "campus-energy/internal/alerts/domain"
	"campus-energy/internal/observability/metrics"
	simulation "campus-energy/internal/simulation/domain"
	"campus-energy/internal/stream"
)

// ErrInvalidStatusFilter marks a List call with an unrecognized status value.
// Callers treat it as bad input; every other List error is a store failure.
var ErrInvalidStatusFilter = errors.New("alerts: invalid status filter")

// Broadcaster pushes serialized payloads to live subscribers.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service evaluates snapshots, persists emitted alerts, and serves the
// list/acknowledge operations used by the API surface.
type Service struct {
	repo   alerts.AlertRepository
	hub    Broadcaster
	clock  Clock
	logger *log.Logger
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithBroadcaster assigns a push channel for alert notices.
func WithBroadcaster(hub Broadcaster) ServiceOption {
	return func(s *Service) {
		s.hub = hub
	}
}

// NewService constructs an alert service.
func NewService(repo alerts.AlertRepository, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("alerts: nil repository")
	}
	if logger == nil {
		return nil, errors.New("alerts: nil logger")
	}
	service := &Service{repo: repo, logger: logger, clock: systemClock{}}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Consume evaluates one snapshot. Emitted alerts are persisted and pushed;
// a failed insert is logged and does not abort the remaining alerts.
func (s *Service) Consume(ctx context.Context, snapshot simulation.SensorSnapshot) error {
	var failed int
	for _, alert := range alerts.Evaluate(snapshot) {
		alert.ID = uuid.NewString()
		if err := s.repo.Create(ctx, alert); err != nil {
			failed++
			s.logger.Printf("alerts: insert failed: severity=%s err=%v", alert.Severity, err)
			continue
		}
		metrics.ObserveAlertEmitted(alert.Severity)
		s.notify(alert)
	}
	if failed > 0 {
		return errors.New("alerts: some inserts failed")
	}
	return nil
}

func (s *Service) notify(alert alerts.Alert) {
	if s.hub == nil {
		return
	}
	payload, err := stream.EncodeAlertNotice(stream.AlertPayload{
		ID:        alert.ID,
		Message:   alert.Message,
		Severity:  alert.Severity,
		Timestamp: alert.Timestamp,
		Status:    alert.Status,
	})
	if err != nil {
		s.logger.Printf("alerts: encode notice failed: %v", err)
		return
	}
	metrics.ObserveBroadcast(stream.MessageTypeAlert)
	s.hub.Broadcast(payload)
}

// List returns recent alerts, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, limit int) ([]alerts.Alert, error) {
	if status != "" && status != alerts.StatusActive && status != alerts.StatusAcknowledged {
		return nil, ErrInvalidStatusFilter
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.List(ctx, status, limit)
}

// Acknowledge marks one alert acknowledged. Returns ErrNotFound for an
// unknown id and ErrAlreadyAcknowledged when it was acknowledged before.
func (s *Service) Acknowledge(ctx context.Context, id string) (*alerts.Alert, error) {
	if id == "" {
		return nil, alerts.ErrNotFound
	}
	if err := s.repo.Acknowledge(ctx, id, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
