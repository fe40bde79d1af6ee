package application

import (
	"context"
	"errors"
	"log"

	"campus-energy/internal/masterdata"
	"campus-energy/internal/observability/metrics"
	simulation "campus-energy/internal/simulation/domain"
	telemetry "campus-energy/internal/telemetry/domain"
)

// Sink converts each snapshot into one energy log append per tenant.
// A failed write for one tenant is logged and counted; the remaining
// tenants still get their rows for that tick.
type Sink struct {
	registry *masterdata.Registry
	repo     telemetry.EnergyLogRepository
	logger   *log.Logger
}

// NewSink constructs a sink.
func NewSink(registry *masterdata.Registry, repo telemetry.EnergyLogRepository, logger *log.Logger) (*Sink, error) {
	if registry == nil {
		return nil, errors.New("telemetry sink: nil registry")
	}
	if repo == nil {
		return nil, errors.New("telemetry sink: nil repository")
	}
	if logger == nil {
		return nil, errors.New("telemetry sink: nil logger")
	}
	return &Sink{registry: registry, repo: repo, logger: logger}, nil
}

// Consume writes the scaled aggregate for every registered tenant.
func (s *Sink) Consume(ctx context.Context, snapshot simulation.SensorSnapshot) error {
	var failed int
	for _, tenant := range s.registry.Tenants() {
		entry := ScaleEntry(snapshot, tenant)
		err := s.repo.Append(ctx, entry)
		metrics.ObserveEnergyLogWrite(err)
		if err != nil {
			failed++
			s.logger.Printf("telemetry sink: append failed: tenant=%s err=%v", tenant.ID, err)
		}
	}
	if failed > 0 {
		return errors.New("telemetry sink: some appends failed")
	}
	return nil
}

// ScaleEntry derives a tenant's energy log row from the shared snapshot.
// Watts become kilowatts before the tenant scale factors apply.
func ScaleEntry(snapshot simulation.SensorSnapshot, tenant masterdata.Tenant) telemetry.EnergyLogEntry {
	return telemetry.EnergyLogEntry{
		Timestamp:           snapshot.Timestamp,
		EnergyGeneratedKW:   snapshot.Solar.Power / 1000 * tenant.Scale.Generation,
		EnergyUsedKW:        snapshot.ConsumptionWatts / 1000 * tenant.Scale.Usage,
		BatteryLevelPercent: snapshot.Battery.Level * tenant.Scale.Battery,
		TenantID:            tenant.ID,
	}
}
