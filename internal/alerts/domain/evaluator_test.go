package alerts

import (
	"testing"
	"time"

	simulation "campus-energy/internal/simulation/domain"
)

func snapshotWith(batteryLevel, temperature float64) simulation.SensorSnapshot {
	return simulation.SensorSnapshot{
		Timestamp: time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
		Solar:     simulation.SolarReading{Temperature: temperature},
		Battery:   simulation.BatteryReading{Level: batteryLevel},
	}
}

func TestEvaluateBatteryCritical(t *testing.T) {
	emitted := Evaluate(snapshotWith(15, 30))
	if len(emitted) != 1 {
		t.Fatalf("got %d alerts, want 1", len(emitted))
	}
	alert := emitted[0]
	if alert.Severity != SeverityHigh {
		t.Fatalf("severity = %q, want high", alert.Severity)
	}
	if alert.Message != MessageBatteryCritical {
		t.Fatalf("message = %q", alert.Message)
	}
	if alert.Status != StatusActive {
		t.Fatalf("status = %q, want active", alert.Status)
	}
}

func TestEvaluatePanelTemperature(t *testing.T) {
	emitted := Evaluate(snapshotWith(50, 40))
	if len(emitted) != 1 {
		t.Fatalf("got %d alerts, want 1", len(emitted))
	}
	if emitted[0].Severity != SeverityMedium {
		t.Fatalf("severity = %q, want medium", emitted[0].Severity)
	}
	if emitted[0].Message != MessagePanelTemperatureHot {
		t.Fatalf("message = %q", emitted[0].Message)
	}
}

func TestEvaluateQuietSnapshot(t *testing.T) {
	if emitted := Evaluate(snapshotWith(50, 30)); len(emitted) != 0 {
		t.Fatalf("got %d alerts, want 0", len(emitted))
	}
	// Boundary values do not fire: thresholds are strict.
	if emitted := Evaluate(snapshotWith(20, 35)); len(emitted) != 0 {
		t.Fatalf("boundary snapshot emitted %d alerts, want 0", len(emitted))
	}
}

func TestEvaluateBothConditions(t *testing.T) {
	emitted := Evaluate(snapshotWith(10, 45))
	if len(emitted) != 2 {
		t.Fatalf("got %d alerts, want 2", len(emitted))
	}
}

func TestEvaluateRepeatsEveryTick(t *testing.T) {
	// No deduplication: the same persisting condition fires again.
	first := Evaluate(snapshotWith(15, 30))
	second := Evaluate(snapshotWith(15, 30))
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d then %d alerts, want 1 and 1", len(first), len(second))
	}
}
