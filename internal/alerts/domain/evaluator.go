package alerts

import (
	simulation "campus-energy/internal/simulation/domain"
)

// Static thresholds evaluated against the raw, un-scaled snapshot.
const (
	BatteryCriticalBelow = 20.0
	PanelTemperatureOver = 35.0
)

const (
	MessageBatteryCritical     = "Battery level critically low"
	MessagePanelTemperatureHot = "Solar panel temperature high"
)

// Evaluate classifies one snapshot against the static thresholds. Both
// checks run independently; either, both, or neither may fire. There is no
// suppression window: a condition that persists across ticks produces a new
// record on every tick.
func Evaluate(snapshot simulation.SensorSnapshot) []Alert {
	var out []Alert
	if snapshot.Battery.Level < BatteryCriticalBelow {
		out = append(out, Alert{
			Message:   MessageBatteryCritical,
			Severity:  SeverityHigh,
			Timestamp: snapshot.Timestamp,
			Status:    StatusActive,
		})
	}
	if snapshot.Solar.Temperature > PanelTemperatureOver {
		out = append(out, Alert{
			Message:   MessagePanelTemperatureHot,
			Severity:  SeverityMedium,
			Timestamp: snapshot.Timestamp,
			Status:    StatusActive,
		})
	}
	return out
}
