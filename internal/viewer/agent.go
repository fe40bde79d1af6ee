package viewer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"campus-energy/internal/stream"
)

// State names the agent's connection lifecycle. There is no terminal state:
// the agent retries forever until its context is canceled.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DefaultRetryDelay is the fixed pause between reconnect attempts.
const DefaultRetryDelay = 5 * time.Second

// Conn is one live connection to the broadcast hub.
type Conn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens connections to the hub.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Readouts carries the latest live values for whatever widgets are mounted.
type Readouts struct {
	UpdatedAt        time.Time
	SolarVoltage     float64
	SolarCurrent     float64
	SolarPowerW      float64
	PanelTemperature float64
	BatteryLevel     float64
	BatteryVoltage   float64
	Charging         bool
	ConsumptionW     float64
}

// Agent keeps exactly one live connection open and keeps downstream UI
// state fresh. Accepted sensor updates refresh the readouts and append one
// point to each rolling chart; connection transitions are reported to the
// status listener so the indicator never shows stale "live" data.
type Agent struct {
	url        string
	dialer     Dialer
	retryDelay time.Duration
	after      func(time.Duration) <-chan time.Time
	logger     *log.Logger

	onState func(State)
	onAlert func(stream.AlertPayload)

	mu              sync.Mutex
	state           State
	readouts        Readouts
	energyGenerated *ChartBuffer
	energyUsed      *ChartBuffer
	batteryLevel    *ChartBuffer
}

// AgentOption customizes the agent.
type AgentOption func(*Agent)

// WithRetryDelay overrides the fixed reconnect delay.
func WithRetryDelay(delay time.Duration) AgentOption {
	return func(a *Agent) {
		if delay > 0 {
			a.retryDelay = delay
		}
	}
}

// WithStateListener registers a callback invoked on every transition.
func WithStateListener(listener func(State)) AgentOption {
	return func(a *Agent) {
		a.onState = listener
	}
}

// WithAlertListener registers a callback for pushed alert notices.
func WithAlertListener(listener func(stream.AlertPayload)) AgentOption {
	return func(a *Agent) {
		a.onAlert = listener
	}
}

// WithChartCapacity overrides the rolling window length.
func WithChartCapacity(capacity int) AgentOption {
	return func(a *Agent) {
		a.energyGenerated = NewChartBuffer(capacity)
		a.energyUsed = NewChartBuffer(capacity)
		a.batteryLevel = NewChartBuffer(capacity)
	}
}

func withAfter(after func(time.Duration) <-chan time.Time) AgentOption {
	return func(a *Agent) {
		a.after = after
	}
}

// NewAgent constructs a reconnection agent in the disconnected state.
func NewAgent(url string, dialer Dialer, logger *log.Logger, opts ...AgentOption) (*Agent, error) {
	if url == "" {
		return nil, errors.New("viewer: empty url")
	}
	if dialer == nil {
		return nil, errors.New("viewer: nil dialer")
	}
	if logger == nil {
		return nil, errors.New("viewer: nil logger")
	}
	agent := &Agent{
		url:             url,
		dialer:          dialer,
		retryDelay:      DefaultRetryDelay,
		after:           time.After,
		logger:          logger,
		state:           StateDisconnected,
		energyGenerated: NewChartBuffer(DefaultChartCapacity),
		energyUsed:      NewChartBuffer(DefaultChartCapacity),
		batteryLevel:    NewChartBuffer(DefaultChartCapacity),
	}
	for _, opt := range opts {
		opt(agent)
	}
	return agent, nil
}

// Run drives the connect/read/retry cycle until ctx is canceled.
func (a *Agent) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			a.setState(StateDisconnected)
			return
		}
		a.setState(StateConnecting)
		conn, err := a.dialer.Dial(ctx, a.url)
		if err != nil {
			a.logger.Printf("viewer: dial failed: %v", err)
			a.setState(StateDisconnected)
			if !a.pause(ctx) {
				return
			}
			continue
		}
		a.setState(StateConnected)
		a.readLoop(ctx, conn)
		_ = conn.Close()
		a.setState(StateDisconnected)
		if !a.pause(ctx) {
			return
		}
	}
}

// State returns the current connection state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Readouts returns the latest accepted values.
func (a *Agent) Readouts() Readouts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readouts
}

// Charts returns copies of the three rolling windows: generated kW,
// consumed kW, battery level percent.
func (a *Agent) Charts() (generated, used, battery []Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.energyGenerated.Points(), a.energyUsed.Points(), a.batteryLevel.Points()
}

func (a *Agent) setState(next State) {
	a.mu.Lock()
	changed := a.state != next
	a.state = next
	listener := a.onState
	a.mu.Unlock()
	if changed && listener != nil {
		listener(next)
	}
}

// pause waits out the fixed retry delay. Returns false when ctx ended.
func (a *Agent) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-a.after(a.retryDelay):
		return true
	}
}

func (a *Agent) readLoop(ctx context.Context, conn Conn) {
	// Unblock the pending read when the context ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Printf("viewer: connection lost: %v", err)
			}
			return
		}
		a.handle(payload)
	}
}

// handle applies one inbound payload. Malformed payloads are logged and
// dropped; unrecognized tags are ignored. Neither causes a state change.
func (a *Agent) handle(payload []byte) {
	messageType, err := stream.DecodeType(payload)
	if err != nil {
		a.logger.Printf("viewer: dropping malformed payload: %v", err)
		return
	}
	switch messageType {
	case stream.MessageTypeSensorUpdate:
		update, err := stream.DecodeSensorUpdate(payload)
		if err != nil {
			a.logger.Printf("viewer: dropping bad sensor update: %v", err)
			return
		}
		a.apply(update)
	case stream.MessageTypeAlert:
		notice, err := stream.DecodeAlertNotice(payload)
		if err != nil {
			a.logger.Printf("viewer: dropping bad alert notice: %v", err)
			return
		}
		if a.onAlert != nil {
			a.onAlert(notice.Alert)
		}
	default:
		// Unknown tags are expected as the protocol grows.
	}
}

func (a *Agent) apply(update stream.SensorUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readouts = Readouts{
		UpdatedAt:        update.Timestamp,
		SolarVoltage:     update.Solar.Voltage,
		SolarCurrent:     update.Solar.Current,
		SolarPowerW:      update.Solar.Power,
		PanelTemperature: update.Solar.Temperature,
		BatteryLevel:     update.Battery.Level,
		BatteryVoltage:   update.Battery.Voltage,
		Charging:         update.Battery.Charging,
		ConsumptionW:     update.Consumption,
	}
	a.energyGenerated.Append(Point{At: update.Timestamp, Value: update.Solar.Power / 1000})
	a.energyUsed.Append(Point{At: update.Timestamp, Value: update.Consumption / 1000})
	a.batteryLevel.Append(Point{At: update.Timestamp, Value: update.Battery.Level})
}
