// Package metrics exposes prometheus instrumentation for the engine.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ETAComputations  prometheus.Counter
	ETAFailures      *prometheus.CounterVec // reason label: not_found|invalid_segment|internal
	SnapshotRequests prometheus.Counter
	SnapshotVehicles prometheus.Histogram

	TelemetryIngested prometheus.Counter
	TelemetryRejected prometheus.Counter
	NATSConnected     prometheus.Gauge

	ComputeDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ETAComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_eta_computations_total",
			Help: "Total ETA computations served.",
		}),
		ETAFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_eta_failures_total",
			Help: "Total ETA computations that failed, by reason.",
		}, []string{"reason"}),
		SnapshotRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_fleet_snapshots_total",
			Help: "Total fleet snapshot requests served.",
		}),
		SnapshotVehicles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_fleet_snapshot_vehicles",
			Help:    "Vehicles returned per fleet snapshot.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		TelemetryIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_telemetry_ingested_total",
			Help: "Total telemetry samples accepted from the feed.",
		}),
		TelemetryRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_telemetry_rejected_total",
			Help: "Total telemetry messages dropped as undecodable.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_eta_compute_duration_seconds",
			Help:    "Duration of ETA computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	reg.MustRegister(
		c.ETAComputations, c.ETAFailures,
		c.SnapshotRequests, c.SnapshotVehicles,
		c.TelemetryIngested, c.TelemetryRejected, c.NATSConnected,
		c.ComputeDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return srv
}
