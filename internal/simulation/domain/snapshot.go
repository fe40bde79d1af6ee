package simulation

import "time"

// SolarReading holds the synthesized photovoltaic values for one tick.
type SolarReading struct {
	Voltage     float64
	Current     float64
	Temperature float64
	Power       float64
}

// BatteryReading holds the synthesized storage values for one tick.
type BatteryReading struct {
	Level    float64
	Voltage  float64
	Charging bool
}

// SensorSnapshot is the full set of sensor values produced by one tick.
// It is immutable once constructed and never persisted verbatim; only
// per-tenant aggregates derived from it reach storage.
type SensorSnapshot struct {
	Timestamp        time.Time
	Solar            SolarReading
	Battery          BatteryReading
	ConsumptionWatts float64
}
