// Package observability provides the Prometheus metrics surface.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all neowatch Prometheus metrics.
type Metrics struct {
	// Simulation loop
	SimFramesTotal  prometheus.Counter
	SimStepDuration prometheus.Histogram
	SimBodyCount    prometheus.Gauge
	SimEnergyDrift  prometheus.Gauge

	// Command surface
	CommandsTotal *prometheus.CounterVec

	// WebSocket streaming
	WSClients prometheus.Gauge
	WSFrames  prometheus.Counter

	// NeoWs adapter
	NeoWsFetches    *prometheus.CounterVec
	AsteroidsLoaded prometheus.Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the process-wide metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.SimFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neowatch",
		Subsystem: "sim",
		Name:      "frames_total",
		Help:      "Total stepping-loop frames executed",
	})

	m.SimStepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "neowatch",
		Subsystem: "sim",
		Name:      "frame_duration_seconds",
		Help:      "Wall time spent integrating one frame",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .016, .05, .1},
	})

	m.SimBodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neowatch",
		Subsystem: "sim",
		Name:      "bodies",
		Help:      "Bodies currently in the simulation",
	})

	m.SimEnergyDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neowatch",
		Subsystem: "sim",
		Name:      "energy_drift",
		Help:      "Relative mechanical energy drift from baseline",
	})

	m.CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neowatch",
		Subsystem: "api",
		Name:      "commands_total",
		Help:      "Commands processed by verb and status",
	}, []string{"verb", "status"})

	m.WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neowatch",
		Subsystem: "ws",
		Name:      "clients",
		Help:      "Connected WebSocket clients",
	})

	m.WSFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neowatch",
		Subsystem: "ws",
		Name:      "frames_total",
		Help:      "Simulation frames broadcast to clients",
	})

	m.NeoWsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neowatch",
		Subsystem: "neows",
		Name:      "fetches_total",
		Help:      "NeoWs API fetches by endpoint and status",
	}, []string{"endpoint", "status"})

	m.AsteroidsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neowatch",
		Subsystem: "neows",
		Name:      "asteroids_loaded_total",
		Help:      "Asteroids parsed and added to the simulation",
	})

	return m
}
