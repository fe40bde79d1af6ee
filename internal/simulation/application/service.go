package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"campus-energy/internal/observability/metrics"
	simulation "campus-energy/internal/simulation/domain"
	"campus-energy/internal/stream"
)

// DefaultInterval is the tick period observed by the dashboard feed.
const DefaultInterval = 5 * time.Second

// SnapshotConsumer receives each tick's snapshot independently of the
// broadcast path.
type SnapshotConsumer interface {
	Consume(ctx context.Context, snapshot simulation.SensorSnapshot) error
}

// Broadcaster pushes one serialized payload to all live subscribers.
type Broadcaster interface {
	Broadcast(payload []byte)
}

type namedConsumer struct {
	name     string
	consumer SnapshotConsumer
}

// Service drives the simulation pipeline: it owns the tick timer and its
// start/stop lifecycle. Ticks are fire-and-forget; consumer work from tick N
// may still be in flight when tick N+1 fires.
type Service struct {
	synthesizer *simulation.Synthesizer
	hub         Broadcaster
	consumers   []namedConsumer
	interval    time.Duration
	logger      *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithInterval overrides the tick period.
func WithInterval(interval time.Duration) ServiceOption {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithConsumer registers a snapshot consumer under a stable name used in
// logs and metrics.
func WithConsumer(name string, consumer SnapshotConsumer) ServiceOption {
	return func(s *Service) {
		if name != "" && consumer != nil {
			s.consumers = append(s.consumers, namedConsumer{name: name, consumer: consumer})
		}
	}
}

// NewService constructs the simulation service.
func NewService(synthesizer *simulation.Synthesizer, hub Broadcaster, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if synthesizer == nil {
		return nil, errors.New("simulation: nil synthesizer")
	}
	if hub == nil {
		return nil, errors.New("simulation: nil hub")
	}
	if logger == nil {
		return nil, errors.New("simulation: nil logger")
	}
	service := &Service{
		synthesizer: synthesizer,
		hub:         hub,
		interval:    DefaultInterval,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Start launches the tick loop. Returns an error when already running.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("simulation: already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)
	s.logger.Printf("simulation: started, interval=%s consumers=%d", s.interval, len(s.consumers))
	return nil
}

// Stop halts the tick loop and waits for it to exit. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Printf("simulation: stopped")
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	snapshot := s.synthesizer.Synthesize()
	metrics.ObserveTick()

	// One marshal per tick: every subscriber receives identical bytes.
	payload, err := stream.EncodeSensorUpdate(snapshot)
	if err != nil {
		s.logger.Printf("simulation: encode failed: %v", err)
	} else {
		metrics.ObserveBroadcast(stream.MessageTypeSensorUpdate)
		s.hub.Broadcast(payload)
	}

	for _, entry := range s.consumers {
		go func(entry namedConsumer) {
			if err := entry.consumer.Consume(ctx, snapshot); err != nil {
				metrics.ObserveConsumerError(entry.name)
				s.logger.Printf("simulation: consumer %s: %v", entry.name, err)
			}
		}(entry)
	}
}
