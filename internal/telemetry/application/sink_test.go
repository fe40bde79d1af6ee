package application

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"campus-energy/internal/masterdata"
	simulation "campus-energy/internal/simulation/domain"
	"campus-energy/internal/telemetry/infrastructure/memory"

	telemetry "campus-energy/internal/telemetry/domain"
)

func testSnapshot() simulation.SensorSnapshot {
	return simulation.SensorSnapshot{
		Timestamp:        time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
		Solar:            simulation.SolarReading{Voltage: 230, Current: 12.5, Temperature: 32.5, Power: 2875},
		Battery:          simulation.BatteryReading{Level: 75, Voltage: 50, Charging: true},
		ConsumptionWatts: 1000,
	}
}

func TestSinkWritesOneEntryPerTenant(t *testing.T) {
	repo := memory.NewEnergyLogRepository()
	sink, err := NewSink(masterdata.DefaultRegistry(), repo, log.New(os.Stdout, "", 0))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.Consume(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("consume: %v", err)
	}

	entries := repo.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	approx := func(name string, got, want float64) {
		t.Helper()
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}

	primary := entries[0]
	if primary.TenantID != "bmu" {
		t.Fatalf("first entry tenant = %q, want bmu", primary.TenantID)
	}
	approx("primary generated", primary.EnergyGeneratedKW, 2.875)
	approx("primary used", primary.EnergyUsedKW, 1.0)
	approx("primary battery", primary.BatteryLevelPercent, 75)

	secondary := entries[1]
	if secondary.TenantID != "adu" {
		t.Fatalf("second entry tenant = %q, want adu", secondary.TenantID)
	}
	approx("secondary generated", secondary.EnergyGeneratedKW, 2.875*0.85)
	approx("secondary used", secondary.EnergyUsedKW, 1.0*0.90)
	approx("secondary battery", secondary.BatteryLevelPercent, 75*0.95)
}

type failingRepo struct {
	failTenant string
	delegate   *memory.EnergyLogRepository
}

func (r *failingRepo) Append(ctx context.Context, entry telemetry.EnergyLogEntry) error {
	if entry.TenantID == r.failTenant {
		return errors.New("write refused")
	}
	return r.delegate.Append(ctx, entry)
}

func TestSinkIsolatesPerTenantFailures(t *testing.T) {
	delegate := memory.NewEnergyLogRepository()
	repo := &failingRepo{failTenant: "bmu", delegate: delegate}
	sink, err := NewSink(masterdata.DefaultRegistry(), repo, log.New(os.Stdout, "", 0))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.Consume(context.Background(), testSnapshot()); err == nil {
		t.Fatal("expected error when one tenant write fails")
	}

	entries := delegate.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].TenantID != "adu" {
		t.Fatalf("surviving entry tenant = %q, want adu", entries[0].TenantID)
	}
}
