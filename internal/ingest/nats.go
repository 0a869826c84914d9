// Package ingest consumes the external telemetry feed and writes it into
// the live position tracker. It is the engine's only writer of shared state.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"pulse.busmetro.org/internal/logging"
	"pulse.busmetro.org/internal/models"
	"pulse.busmetro.org/internal/tracker"
)

// telemetryMessage is the wire shape the ingestion collaborator publishes,
// one message per vehicle per reporting interval.
type telemetryMessage struct {
	VehicleID    string    `json:"vehicleId"`
	Timestamp    time.Time `json:"timestamp"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	SpeedKmh     float64   `json:"speed"`
	Heading      float64   `json:"heading"`
	TrafficLevel int       `json:"trafficLevel"`
	DelayMin     int       `json:"delayMin"`
}

// Metrics is the subset of instrumentation the subscriber reports into.
type Metrics interface {
	TelemetryIngestedInc()
	TelemetryRejectedInc()
	NATSSetConnected(connected bool)
}

// Subscriber feeds NATS telemetry messages into the tracker. Duplicate and
// out-of-order delivery are absorbed by the tracker's record semantics, so
// the subscriber itself stays stateless.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	tracker *tracker.Tracker
	logger  *slog.Logger
	metrics Metrics
}

// NewSubscriber connects to NATS and subscribes to the telemetry subject
// (typically "telemetry.>", one token per vehicle).
func NewSubscriber(url, subject string, t *tracker.Tracker, logger *slog.Logger, m Metrics) (*Subscriber, error) {
	logger = logger.With(slog.String("component", "telemetry_ingest"))

	nc, err := nats.Connect(url,
		nats.Name("pulse-api"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	s := &Subscriber{
		nc:      nc,
		tracker: t,
		logger:  logger,
		metrics: m,
	}

	sub, err := nc.Subscribe(subject, s.handleMessage)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}
	s.sub = sub

	if m != nil {
		m.NATSSetConnected(true)
	}
	logger.Info("telemetry subscription established", "subject", subject)
	return s, nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	var tm telemetryMessage
	if err := json.Unmarshal(msg.Data, &tm); err != nil {
		if s.metrics != nil {
			s.metrics.TelemetryRejectedInc()
		}
		logging.LogError(s.logger, "dropping undecodable telemetry message", err,
			slog.String("subject", msg.Subject))
		return
	}
	if tm.VehicleID == "" || tm.Timestamp.IsZero() {
		if s.metrics != nil {
			s.metrics.TelemetryRejectedInc()
		}
		return
	}

	s.tracker.Record(models.TelemetrySample{
		VehicleID:    tm.VehicleID,
		Timestamp:    tm.Timestamp,
		Location:     models.Location{Lat: tm.Lat, Lon: tm.Lon},
		SpeedKmh:     tm.SpeedKmh,
		Heading:      tm.Heading,
		TrafficLevel: tm.TrafficLevel,
		DelayMin:     tm.DelayMin,
	})
	if s.metrics != nil {
		s.metrics.TelemetryIngestedInc()
	}
}

// Close drains the subscription so in-flight messages land before shutdown.
func (s *Subscriber) Close() {
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	if s.nc != nil {
		_ = s.nc.Drain()
		s.nc.Close()
	}
}
