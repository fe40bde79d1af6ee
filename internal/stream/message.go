package stream

import (
	"encoding/json"
	"errors"
	"time"

	simulation "campus-energy/internal/simulation/domain"
)

// Message types carried on the push channel.
const (
	MessageTypeSensorUpdate = "sensor_update"
	MessageTypeAlert        = "alert"
)

// ErrUnknownMessageType marks a payload whose tag is not recognized.
// Receivers must skip such payloads rather than fail.
var ErrUnknownMessageType = errors.New("stream: unknown message type")

// SolarPayload mirrors SolarReading on the wire.
type SolarPayload struct {
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Temperature float64 `json:"temperature"`
	Power       float64 `json:"power"`
}

// BatteryPayload mirrors BatteryReading on the wire.
type BatteryPayload struct {
	Level    float64 `json:"level"`
	Voltage  float64 `json:"voltage"`
	Charging bool    `json:"charging"`
}

// SensorUpdate is the live snapshot pushed to every subscriber on a tick.
type SensorUpdate struct {
	Type        string         `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Solar       SolarPayload   `json:"solar"`
	Battery     BatteryPayload `json:"battery"`
	Consumption float64        `json:"consumption"`
}

// AlertNotice is pushed when the evaluator emits an alert record.
type AlertNotice struct {
	Type  string       `json:"type"`
	Alert AlertPayload `json:"alert"`
}

// AlertPayload mirrors an alert record on the wire.
type AlertPayload struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// EncodeSensorUpdate serializes one snapshot into its wire envelope. The
// caller broadcasts the returned bytes as-is so every subscriber in a tick
// receives an identical payload.
func EncodeSensorUpdate(snapshot simulation.SensorSnapshot) ([]byte, error) {
	update := SensorUpdate{
		Type:      MessageTypeSensorUpdate,
		Timestamp: snapshot.Timestamp,
		Solar: SolarPayload{
			Voltage:     snapshot.Solar.Voltage,
			Current:     snapshot.Solar.Current,
			Temperature: snapshot.Solar.Temperature,
			Power:       snapshot.Solar.Power,
		},
		Battery: BatteryPayload{
			Level:    snapshot.Battery.Level,
			Voltage:  snapshot.Battery.Voltage,
			Charging: snapshot.Battery.Charging,
		},
		Consumption: snapshot.ConsumptionWatts,
	}
	return json.Marshal(update)
}

// EncodeAlertNotice serializes an alert envelope.
func EncodeAlertNotice(alert AlertPayload) ([]byte, error) {
	return json.Marshal(AlertNotice{Type: MessageTypeAlert, Alert: alert})
}

type typeHeader struct {
	Type string `json:"type"`
}

// DecodeType extracts the message tag from a payload.
func DecodeType(payload []byte) (string, error) {
	var header typeHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return "", err
	}
	if header.Type == "" {
		return "", errors.New("stream: missing message type")
	}
	return header.Type, nil
}

// DecodeSensorUpdate parses and validates a sensor_update payload.
func DecodeSensorUpdate(payload []byte) (SensorUpdate, error) {
	var update SensorUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		return SensorUpdate{}, err
	}
	if update.Type != MessageTypeSensorUpdate {
		return SensorUpdate{}, ErrUnknownMessageType
	}
	if update.Timestamp.IsZero() {
		return SensorUpdate{}, errors.New("stream: sensor update missing timestamp")
	}
	return update, nil
}

// DecodeAlertNotice parses and validates an alert payload.
func DecodeAlertNotice(payload []byte) (AlertNotice, error) {
	var notice AlertNotice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return AlertNotice{}, err
	}
	if notice.Type != MessageTypeAlert {
		return AlertNotice{}, ErrUnknownMessageType
	}
	if notice.Alert.Message == "" {
		return AlertNotice{}, errors.New("stream: alert notice missing message")
	}
	return notice, nil
}
