package simulation

import (
	"math"
	"math/rand/v2"
	"time"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Rand provides uniform draws in [0,1).
type Rand interface {
	Float64() float64
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }

// Synthesizer produces one plausible sensor snapshot per invocation.
// It is pure with respect to its clock and random source.
type Synthesizer struct {
	clock Clock
	rand  Rand
}

// SynthesizerOption customizes the synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithClock assigns a clock.
func WithClock(clock Clock) SynthesizerOption {
	return func(s *Synthesizer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRand assigns a random source.
func WithRand(rand Rand) SynthesizerOption {
	return func(s *Synthesizer) {
		if rand != nil {
			s.rand = rand
		}
	}
}

// NewSynthesizer constructs a synthesizer with system clock and randomness.
func NewSynthesizer(opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{clock: systemClock{}, rand: systemRand{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SolarMultiplier returns the day-cycle shaping factor for an hour of day.
// Zero outside [6,18], a smooth unimodal curve peaking at 1.0 for hour 12.
func SolarMultiplier(hour int) float64 {
	if hour < 6 || hour > 18 {
		return 0
	}
	return math.Sin(float64(hour-6) * math.Pi / 12)
}

// Synthesize produces one snapshot from the current wall-clock hour and
// uniform perturbation. Power scales with the square of the solar
// multiplier since both voltage and current are shaped by it.
func (s *Synthesizer) Synthesize() SensorSnapshot {
	now := s.clock.Now()
	multiplier := SolarMultiplier(now.Hour())

	solar := SolarReading{
		Voltage:     s.uniform(220, 20) * multiplier,
		Current:     s.uniform(10, 5) * multiplier,
		Temperature: s.uniform(25, 15),
	}
	solar.Power = solar.Voltage * solar.Current

	battery := BatteryReading{
		Level:    s.uniform(60, 30),
		Voltage:  s.uniform(48, 4),
		Charging: solar.Power > 1000,
	}

	return SensorSnapshot{
		Timestamp:        now,
		Solar:            solar,
		Battery:          battery,
		ConsumptionWatts: s.uniform(800, 400),
	}
}

func (s *Synthesizer) uniform(base, spread float64) float64 {
	return base + s.rand.Float64()*spread
}
