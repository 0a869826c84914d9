// Package fleet builds live snapshots of active vehicles: last known state
// plus short-horizon per-stop arrival estimates.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pulse.busmetro.org/internal/eta"
	"pulse.busmetro.org/internal/geo"
	"pulse.busmetro.org/internal/logging"
	"pulse.busmetro.org/internal/models"
	"pulse.busmetro.org/internal/traveltime"
)

// RouteLister is the reference-data view the snapshot builder needs on top
// of the per-route sources shared with the ETA ranker.
type RouteLister interface {
	eta.RouteSource
	Routes(ctx context.Context, city string) ([]*models.Route, error)
}

// Filter restricts a snapshot to one route, one city, or a bounding box.
// Zero-value fields are ignored; an empty filter covers the whole fleet.
type Filter struct {
	RouteID string
	City    string
	Bounds  *models.BoundingBox
}

// StopETA is the arrival estimate for one upcoming stop.
type StopETA struct {
	StopID     string  `json:"stopId"`
	StopName   string  `json:"stopName"`
	StopIndex  int     `json:"stopIndex"`
	DistanceKm float64 `json:"distance"`
	Minutes    int     `json:"eta"`
}

// VehicleSnapshot is one vehicle's live state. Vehicles without a current
// telemetry sample carry Status "no_data" and no position or estimates.
type VehicleSnapshot struct {
	VehicleID         string           `json:"vehicleId"`
	Number            string           `json:"number,omitempty"`
	RouteID           string           `json:"routeId"`
	RouteName         string           `json:"routeName"`
	Status            string           `json:"status"`
	Position          *models.Location `json:"position,omitempty"`
	SpeedKmh          float64          `json:"speed,omitempty"`
	Heading           float64          `json:"heading,omitempty"`
	DelayMin          int              `json:"delay,omitempty"`
	LastUpdate        *time.Time       `json:"lastUpdate,omitempty"`
	NextStops         []StopETA        `json:"nextStops"`
	EstimatedArrivals []int            `json:"estimatedArrivals"`
}

const (
	StatusActive = "active"
	StatusNoData = "no_data"

	maxNextStops = 3
)

// Builder assembles fleet snapshots. Output is recomputed on every call
// since telemetry is continuously superseded.
type Builder struct {
	routes    RouteLister
	schedules eta.ScheduleSource
	vehicles  eta.VehicleSource
	telemetry eta.TelemetrySource

	estimator *traveltime.Estimator
	logger    *slog.Logger

	FanOutLimit int
	ReadTimeout time.Duration
	StaleAfter  time.Duration
}

func NewBuilder(routes RouteLister, schedules eta.ScheduleSource, vehicles eta.VehicleSource, telemetry eta.TelemetrySource, logger *slog.Logger) *Builder {
	return &Builder{
		routes:      routes,
		schedules:   schedules,
		vehicles:    vehicles,
		telemetry:   telemetry,
		estimator:   traveltime.NewEstimator(),
		logger:      logger.With(slog.String("component", "fleet_snapshot")),
		FanOutLimit: eta.DefaultFanOutLimit,
		ReadTimeout: eta.DefaultReadTimeout,
		StaleAfter:  30 * time.Minute,
	}
}

// Snapshot lists every active vehicle matching the filter, with its last
// telemetry and per-stop ETAs for its next stops. One pass over the fleet;
// a failed read degrades that one vehicle rather than the snapshot.
func (b *Builder) Snapshot(ctx context.Context, filter Filter) ([]VehicleSnapshot, error) {
	routes, err := b.selectRoutes(ctx, filter)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		snapshots []VehicleSnapshot
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.FanOutLimit)

	now := time.Now()
	for _, route := range routes {
		scheds, err := b.fetchSchedules(ctx, route.ID)
		if err != nil {
			continue
		}
		route := route
		for _, vehicleID := range vehicleIDs(scheds) {
			vehicleID := vehicleID
			g.Go(func() error {
				snapshot, ok := b.vehicleSnapshot(groupCtx, route, vehicleID, filter, now)
				if !ok {
					return nil
				}
				mu.Lock()
				snapshots = append(snapshots, snapshot)
				mu.Unlock()
				return nil
			})
		}
	}

	_ = g.Wait()

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].RouteID != snapshots[j].RouteID {
			return snapshots[i].RouteID < snapshots[j].RouteID
		}
		return snapshots[i].VehicleID < snapshots[j].VehicleID
	})
	return snapshots, nil
}

func (b *Builder) selectRoutes(ctx context.Context, filter Filter) ([]*models.Route, error) {
	readCtx, cancel := context.WithTimeout(ctx, b.ReadTimeout)
	defer cancel()

	if filter.RouteID != "" {
		route, err := b.routes.RouteByID(readCtx, filter.RouteID)
		if err != nil {
			return nil, err
		}
		return []*models.Route{route}, nil
	}
	return b.routes.Routes(readCtx, filter.City)
}

func (b *Builder) fetchSchedules(ctx context.Context, routeID string) ([]models.Schedule, error) {
	readCtx, cancel := context.WithTimeout(ctx, b.ReadTimeout)
	defer cancel()

	scheds, err := b.schedules.SchedulesForRoute(readCtx, routeID)
	if err != nil {
		logging.LogError(b.logger, "schedule source unavailable, skipping route", err,
			slog.String("route_id", routeID))
		return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err)
	}
	return scheds, nil
}

func (b *Builder) vehicleSnapshot(ctx context.Context, route *models.Route, vehicleID string, filter Filter, now time.Time) (VehicleSnapshot, bool) {
	readCtx, cancel := context.WithTimeout(ctx, b.ReadTimeout)
	defer cancel()

	vehicle, err := b.vehicles.VehicleByID(readCtx, vehicleID)
	if err != nil || !vehicle.Active {
		return VehicleSnapshot{}, false
	}

	snapshot := VehicleSnapshot{
		VehicleID:         vehicleID,
		Number:            vehicle.Number,
		RouteID:           route.ID,
		RouteName:         route.Name,
		Status:            StatusNoData,
		NextStops:         []StopETA{},
		EstimatedArrivals: []int{},
	}

	sample, ok, err := b.telemetry.Latest(readCtx, vehicleID)
	if err != nil {
		logging.LogError(b.logger, "telemetry read failed, listing vehicle without data", err,
			slog.String("vehicle_id", vehicleID))
		return snapshot, filter.Bounds == nil
	}
	if !ok || sample.Timestamp.Before(now.Add(-b.StaleAfter)) {
		// Listed, but carries no position; a bounding-box filter cannot
		// match a vehicle with no known position.
		return snapshot, filter.Bounds == nil
	}

	if filter.Bounds != nil && !filter.Bounds.Contains(sample.Location) {
		return VehicleSnapshot{}, false
	}

	snapshot.Status = StatusActive
	snapshot.Position = &sample.Location
	snapshot.SpeedKmh = sample.SpeedKmh
	snapshot.Heading = sample.Heading
	snapshot.DelayMin = sample.DelayMin
	snapshot.LastUpdate = &sample.Timestamp

	for _, stopETA := range b.upcomingStops(route, sample) {
		snapshot.NextStops = append(snapshot.NextStops, stopETA)
		snapshot.EstimatedArrivals = append(snapshot.EstimatedArrivals, stopETA.Minutes)
	}
	return snapshot, true
}

// upcomingStops estimates arrivals at the stops following the one nearest
// the vehicle's current position. Stops the vehicle is sitting on (zero
// distance) are skipped rather than reported as instant arrivals.
func (b *Builder) upcomingStops(route *models.Route, sample models.TelemetrySample) []StopETA {
	if len(route.Stops) == 0 {
		return nil
	}

	nearest := route.Stops[0]
	nearestDistance := geo.Distance(sample.Location, nearest.Location)
	for _, stop := range route.Stops[1:] {
		if d := geo.Distance(sample.Location, stop.Location); d < nearestDistance {
			nearest = stop
			nearestDistance = d
		}
	}

	speed := math.Max(sample.SpeedKmh, b.estimator.BaseSpeedKmh)

	var result []StopETA
	for _, stop := range route.StopsAfter(nearest.Index, maxNextStops) {
		distance := geo.Distance(sample.Location, stop.Location)
		if distance == 0 {
			continue
		}
		result = append(result, StopETA{
			StopID:     stop.ID,
			StopName:   stop.Name,
			StopIndex:  stop.Index,
			DistanceKm: distance,
			Minutes:    int(math.Round(distance/speed*60)) + sample.DelayMin,
		})
	}
	return result
}

func vehicleIDs(scheds []models.Schedule) []string {
	seen := make(map[string]bool, len(scheds))
	var ids []string
	for i := range scheds {
		id := scheds[i].VehicleID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
