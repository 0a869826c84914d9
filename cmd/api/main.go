package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pulse.busmetro.org/internal/app"
	"pulse.busmetro.org/internal/eta"
	"pulse.busmetro.org/internal/fleet"
	"pulse.busmetro.org/internal/ingest"
	"pulse.busmetro.org/internal/logging"
	"pulse.busmetro.org/internal/metrics"
	"pulse.busmetro.org/internal/refdata"
	"pulse.busmetro.org/internal/restapi"
	"pulse.busmetro.org/internal/tracker"
)

func main() {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	var cfg app.Config
	var apiKeysFlag string
	var seedPath string
	var gtfsPath string
	var gtfsCity string
	var natsURL string
	var natsSubject string
	var metricsAddr string

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&cfg.Env, "env", envDefault("ENV", "development"), "Environment (development|staging|production)")
	flag.StringVar(&apiKeysFlag, "api-keys", envDefault("API_KEYS", "test"), "Comma separated API keys")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key (negative disables)")
	flag.StringVar(&seedPath, "seed", os.Getenv("SEED_FILE"), "Path to a JSON reference data seed file")
	flag.StringVar(&gtfsPath, "gtfs", os.Getenv("GTFS_FILE"), "Path to a static GTFS zip to import as reference data")
	flag.StringVar(&gtfsCity, "gtfs-city", os.Getenv("GTFS_CITY"), "City tag applied to GTFS-imported routes")
	flag.StringVar(&natsURL, "nats-url", envDefault("NATS_URL", ""), "NATS server URL for the telemetry feed (empty disables ingestion)")
	flag.StringVar(&natsSubject, "nats-subject", envDefault("NATS_SUBJECT", "telemetry.>"), "NATS subject for telemetry messages")
	flag.StringVar(&metricsAddr, "metrics-addr", os.Getenv("METRICS_ADDR"), "Listen address for /metrics (empty disables)")
	flag.Parse()

	if apiKeysFlag != "" {
		cfg.ApiKeys = strings.Split(apiKeysFlag, ",")
		for i := range cfg.ApiKeys {
			cfg.ApiKeys[i] = strings.TrimSpace(cfg.ApiKeys[i])
		}
	}

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)

	store := refdata.NewStore()
	switch {
	case seedPath != "":
		if err := refdata.LoadSeedFile(store, seedPath); err != nil {
			logger.Error("failed to load reference data seed", "error", err, "path", seedPath)
			os.Exit(1)
		}
	case gtfsPath != "":
		if err := refdata.ImportGTFSStatic(store, gtfsPath, gtfsCity); err != nil {
			logger.Error("failed to import GTFS reference data", "error", err, "path", gtfsPath)
			os.Exit(1)
		}
	default:
		logger.Warn("no reference data source configured, starting with an empty store")
	}

	routes, stops, schedules, vehicles := store.Statistics()
	logger.Info("reference data loaded",
		"routes", routes, "stops", stops, "schedules", schedules, "vehicles", vehicles)

	liveTracker := tracker.New()
	stopPrune := make(chan struct{})
	go liveTracker.PruneLoop(10*time.Minute, stopPrune)

	var collector *metrics.Collector
	var metricsSrv *http.Server
	if metricsAddr != "" {
		collector = metrics.NewCollector()
		metricsSrv = collector.Serve(metricsAddr, logger)
	}

	var subscriber *ingest.Subscriber
	if natsURL != "" {
		var err error
		subscriber, err = ingest.NewSubscriber(natsURL, natsSubject, liveTracker, logger, ingestMetrics(collector))
		if err != nil {
			logger.Error("failed to start telemetry ingestion", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("telemetry ingestion disabled, live estimates will be schedule-only")
	}

	application := &app.Application{
		Config:  cfg,
		Logger:  logger,
		RefData: store,
		Tracker: liveTracker,
		ETA:     eta.NewService(store, store, store, liveTracker, logger),
		Fleet:   fleet.NewBuilder(store, store, store, liveTracker, logger),
		Metrics: collector,
	}

	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Router(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if subscriber != nil {
		subscriber.Close()
	}
	close(stopPrune)
	logger.Info("shutdown complete")
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ingestMetrics adapts the Collector to the subscriber's metrics interface.
func ingestMetrics(c *metrics.Collector) ingest.Metrics {
	if c == nil {
		return nil
	}
	return &subscriberMetrics{c: c}
}

type subscriberMetrics struct{ c *metrics.Collector }

func (m *subscriberMetrics) TelemetryIngestedInc() { m.c.TelemetryIngested.Inc() }
func (m *subscriberMetrics) TelemetryRejectedInc() { m.c.TelemetryRejected.Inc() }
func (m *subscriberMetrics) NATSSetConnected(connected bool) {
	if connected {
		m.c.NATSConnected.Set(1)
	} else {
		m.c.NATSConnected.Set(0)
	}
}
