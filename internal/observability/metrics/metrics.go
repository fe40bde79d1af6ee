package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "campus_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	simulationTicks    prometheus.Counter
	simulationConsumer *prometheus.CounterVec

	broadcastMessages *prometheus.CounterVec
	broadcastDropped  prometheus.Counter
	streamSubscribers prometheus.Gauge

	energyLogWrites *prometheus.CounterVec

	alertsEmitted *prometheus.CounterVec
)

// Init registers pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		simulationTicks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulation_ticks_total",
				Help: "Total simulation ticks fired",
			},
		)
		simulationConsumer = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulation_consumer_errors_total",
				Help: "Total snapshot consumer errors by consumer",
			},
			[]string{"consumer"},
		)

		broadcastMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "broadcast_messages_total",
				Help: "Total broadcast payloads by message type",
			},
			[]string{"type"},
		)
		broadcastDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "broadcast_dropped_total",
				Help: "Total per-subscriber sends skipped because the channel was not writable",
			},
		)
		streamSubscribers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stream_subscribers",
				Help: "Current number of connected subscribers",
			},
		)

		energyLogWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "energy_log_writes_total",
				Help: "Total energy log appends by result",
			},
			[]string{"result"},
		)

		alertsEmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_emitted_total",
				Help: "Total alerts emitted by severity",
			},
			[]string{"severity"},
		)

		prometheus.MustRegister(
			simulationTicks,
			simulationConsumer,
			broadcastMessages,
			broadcastDropped,
			streamSubscribers,
			energyLogWrites,
			alertsEmitted,
		)
	})
}

// ObserveTick counts one simulation tick.
func ObserveTick() {
	if simulationTicks != nil {
		simulationTicks.Inc()
	}
}

// ObserveConsumerError counts a snapshot consumer failure.
func ObserveConsumerError(consumer string) {
	if simulationConsumer != nil {
		simulationConsumer.WithLabelValues(consumer).Inc()
	}
}

// ObserveBroadcast counts one broadcast by message type.
func ObserveBroadcast(messageType string) {
	if broadcastMessages != nil {
		broadcastMessages.WithLabelValues(messageType).Inc()
	}
}

// ObserveBroadcastDropped counts a skipped subscriber send.
func ObserveBroadcastDropped() {
	if broadcastDropped != nil {
		broadcastDropped.Inc()
	}
}

// SetSubscribers records the live subscriber count.
func SetSubscribers(count int) {
	if streamSubscribers != nil {
		streamSubscribers.Set(float64(count))
	}
}

// ObserveEnergyLogWrite counts one append attempt.
func ObserveEnergyLogWrite(err error) {
	if energyLogWrites == nil {
		return
	}
	if err != nil {
		energyLogWrites.WithLabelValues(resultError).Inc()
		return
	}
	energyLogWrites.WithLabelValues(resultSuccess).Inc()
}

// ObserveAlertEmitted counts one emitted alert.
func ObserveAlertEmitted(severity string) {
	if alertsEmitted != nil {
		alertsEmitted.WithLabelValues(severity).Inc()
	}
}
