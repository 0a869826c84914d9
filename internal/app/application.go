package app

import (
	"log/slog"

	"pulse.busmetro.org/internal/eta"
	"pulse.busmetro.org/internal/fleet"
	"pulse.busmetro.org/internal/metrics"
	"pulse.busmetro.org/internal/refdata"
	"pulse.busmetro.org/internal/tracker"
)

// Application holds the dependencies for our HTTP handlers, helpers, and
// middleware. Collaborators are explicit handles, never process-wide
// singletons, so tests can assemble an Application from fakes.
type Application struct {
	Config  Config
	Logger  *slog.Logger
	RefData *refdata.Store
	Tracker *tracker.Tracker
	ETA     *eta.Service
	Fleet   *fleet.Builder
	Metrics *metrics.Collector
}

// Config holds all the configuration settings for our Application. These are
// read from command-line flags layered over the environment when the
// Application starts.
type Config struct {
	Port      int
	Env       string
	ApiKeys   []string
	RateLimit int
}
