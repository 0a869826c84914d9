// Package eta ranks arrival estimates for journey requests, fusing nominal
// schedule math with live vehicle telemetry.
package eta

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pulse.busmetro.org/internal/geo"
	"pulse.busmetro.org/internal/logging"
	"pulse.busmetro.org/internal/models"
	"pulse.busmetro.org/internal/schedule"
	"pulse.busmetro.org/internal/traffic"
	"pulse.busmetro.org/internal/traveltime"
)

// Collaborator interfaces. The engine never talks to storage directly; it is
// handed these read-only views of the surrounding product's data.
type RouteSource interface {
	RouteByID(ctx context.Context, id string) (*models.Route, error)
}

type ScheduleSource interface {
	SchedulesForRoute(ctx context.Context, routeID string) ([]models.Schedule, error)
}

type VehicleSource interface {
	VehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
}

type TelemetrySource interface {
	Latest(ctx context.Context, vehicleID string) (models.TelemetrySample, bool, error)
	Window(ctx context.Context, vehicleIDs []string, since time.Time, cap int) ([]models.TelemetrySample, error)
}

const (
	// DefaultFanOutLimit bounds concurrent per-vehicle reads per request.
	DefaultFanOutLimit = 8
	// DefaultReadTimeout bounds each individual collaborator read.
	DefaultReadTimeout = 2 * time.Second

	maxNearbyVehicles     = 5
	maxUpcomingDepartures = 3
)

// Service answers journey requests. Each request is independent and
// stateless; all shared state lives behind the collaborator interfaces.
type Service struct {
	routes    RouteSource
	schedules ScheduleSource
	vehicles  VehicleSource
	telemetry TelemetrySource

	traffic   *traffic.Model
	estimator *traveltime.Estimator
	logger    *slog.Logger

	// FanOutLimit and ReadTimeout tune the per-request fan-out stage.
	FanOutLimit int
	ReadTimeout time.Duration
}

func NewService(routes RouteSource, schedules ScheduleSource, vehicles VehicleSource, telemetry TelemetrySource, logger *slog.Logger) *Service {
	return &Service{
		routes:      routes,
		schedules:   schedules,
		vehicles:    vehicles,
		telemetry:   telemetry,
		traffic:     traffic.NewModel(),
		estimator:   traveltime.NewEstimator(),
		logger:      logger.With(slog.String("component", "eta_service")),
		FanOutLimit: DefaultFanOutLimit,
		ReadTimeout: DefaultReadTimeout,
	}
}

// ComputeETA computes bounded arrival estimates for one journey request.
// Unknown routes or stops fail with models.ErrNotFound; a reversed segment
// fails with models.ErrInvalidSegment. Telemetry or schedule source failures
// degrade the answer instead of failing it.
func (s *Service) ComputeETA(ctx context.Context, req Request) (*Result, error) {
	now := time.Now()
	if req.ReferenceTime != nil {
		now = *req.ReferenceTime
	}

	route, err := s.fetchRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}

	from := route.StopByID(req.FromStopID)
	to := route.StopByID(req.ToStopID)
	if from == nil || to == nil {
		return nil, fmt.Errorf("stop not on route %s: %w", route.ID, models.ErrNotFound)
	}

	scheds := s.fetchSchedules(ctx, route.ID)
	vehicleIDs := scheduledVehicleIDs(scheds)

	multiplier := 1.0
	if req.considerTraffic() {
		multiplier = s.trafficMultiplier(ctx, vehicleIDs, now)
	}
	if req.ConsiderWeather {
		multiplier *= s.traffic.WeatherMultiplier()
	}

	estimate, err := s.estimator.Estimate(route, from, to, multiplier)
	if err != nil {
		return nil, err
	}

	candidates, departures := s.fanOut(ctx, route, from, scheds, estimate, now)

	figures := Figures{
		BestCase:    estimate.BestCase,
		Average:     estimate.Nominal,
		WorstCase:   estimate.WorstCase,
		Recommended: estimate.Nominal,
	}
	// The nearest live vehicle is named only when it beats the nominal
	// average; otherwise the schedule-derived figure stands unattributed.
	if len(candidates) > 0 && candidates[0].EstimatedArrival < estimate.Nominal {
		nearest := candidates[0]
		figures.Recommended = nearest.EstimatedArrival
		figures.RecommendedVehicle = &RecommendedVehicle{
			VehicleID:        nearest.VehicleID,
			Number:           nearest.Number,
			DistanceKm:       nearest.DistanceKm,
			EstimatedArrival: nearest.EstimatedArrival,
		}
	}

	return &Result{
		Route: RouteSummary{
			ID:         route.ID,
			Name:       route.Name,
			City:       route.City,
			DistanceKm: route.DistanceKm,
		},
		Journey: Journey{
			FromStop:   StopSummary{ID: from.ID, Name: from.Name, Index: from.Index},
			ToStop:     StopSummary{ID: to.ID, Name: to.Name, Index: to.Index},
			StopCount:  estimate.StopCount,
			DistanceKm: estimate.DistanceKm,
		},
		ETA: figures,
		Factors: Factors{
			TrafficMultiplier: multiplier,
			BaseSpeedKmh:      s.estimator.BaseSpeedKmh,
			DwellMinutes:      estimate.DwellMinutes,
			ConsiderTraffic:   req.considerTraffic(),
			ConsiderWeather:   req.ConsiderWeather,
		},
		NearbyVehicles:     candidates,
		ScheduleDepartures: departures,
		CalculatedAt:       now,
	}, nil
}

func (s *Service) fetchRoute(ctx context.Context, routeID string) (*models.Route, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	route, err := s.routes.RouteByID(readCtx, routeID)
	if err != nil {
		return nil, err
	}
	return route, nil
}

// fetchSchedules degrades to an empty schedule set on source failure; the
// caller still gets a nominal estimate with no live candidates.
func (s *Service) fetchSchedules(ctx context.Context, routeID string) []models.Schedule {
	readCtx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	scheds, err := s.schedules.SchedulesForRoute(readCtx, routeID)
	if err != nil {
		logging.LogError(s.logger, "schedule source unavailable, degrading to nominal estimate",
			fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err),
			slog.String("route_id", routeID))
		return nil
	}
	return scheds
}

// trafficMultiplier reads the recent telemetry window for the route's
// vehicles. Source failure or an empty window both yield the neutral 1.0.
func (s *Service) trafficMultiplier(ctx context.Context, vehicleIDs []string, now time.Time) float64 {
	if len(vehicleIDs) == 0 {
		return 1.0
	}

	readCtx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	samples, err := s.telemetry.Window(readCtx, vehicleIDs, now.Add(-s.traffic.Window), s.traffic.SampleCap)
	if err != nil {
		logging.LogError(s.logger, "telemetry window unavailable, using neutral traffic multiplier",
			fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err))
		return 1.0
	}
	return s.traffic.Multiplier(samples)
}

// fanOut runs the independent per-vehicle reads and per-schedule occurrence
// computations concurrently and joins them before ranking. A failed or
// timed-out read degrades that one candidate, never the request.
func (s *Service) fanOut(ctx context.Context, route *models.Route, origin *models.Stop, scheds []models.Schedule, estimate traveltime.Estimate, now time.Time) ([]Candidate, []Departure) {
	var (
		mu         sync.Mutex
		candidates []Candidate
		occLists   [][]schedule.Occurrence
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.FanOutLimit)

	for _, vehicleID := range scheduledVehicleIDs(scheds) {
		vehicleID := vehicleID
		g.Go(func() error {
			candidate, ok := s.liveCandidate(groupCtx, origin, vehicleID, now)
			if !ok {
				return nil
			}
			mu.Lock()
			candidates = append(candidates, candidate)
			mu.Unlock()
			return nil
		})
	}

	for i := range scheds {
		sched := scheds[i]
		g.Go(func() error {
			// Each schedule is expanded to its next few occurrences, so a
			// frequency-repeating schedule contributes every repeat, not
			// just the first.
			occs := schedule.NextOccurrences(&sched, now, maxUpcomingDepartures)
			if len(occs) == 0 {
				return nil
			}
			mu.Lock()
			occLists = append(occLists, occs)
			mu.Unlock()
			return nil
		})
	}

	// Workers only ever return nil; the group exists for its limit and join.
	_ = g.Wait()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})
	if len(candidates) > maxNearbyVehicles {
		candidates = candidates[:maxNearbyVehicles]
	}

	var departures []Departure
	for _, occ := range schedule.MergeOccurrences(occLists, maxUpcomingDepartures) {
		departures = append(departures, Departure{
			ScheduleID:       occ.ScheduleID,
			VehicleID:        occ.VehicleID,
			Number:           s.vehicleNumber(ctx, occ.VehicleID),
			DepartureTime:    occ.Departure,
			EstimatedArrival: occ.Departure.Add(time.Duration(estimate.Nominal) * time.Minute),
			TotalDuration:    estimate.Nominal,
		})
	}

	return candidates, departures
}

// liveCandidate builds the ranked-candidate entry for one vehicle. Vehicles
// without telemetry, with a sample older than the traffic window, or sitting
// exactly on the origin stop are excluded rather than reported as zero.
func (s *Service) liveCandidate(ctx context.Context, origin *models.Stop, vehicleID string, now time.Time) (Candidate, bool) {
	readCtx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	sample, ok, err := s.telemetry.Latest(readCtx, vehicleID)
	if err != nil {
		logging.LogError(s.logger, "telemetry read failed, excluding candidate", err,
			slog.String("vehicle_id", vehicleID))
		return Candidate{}, false
	}
	if !ok || sample.Timestamp.Before(now.Add(-s.traffic.Window)) {
		return Candidate{}, false
	}

	distance := geo.Distance(sample.Location, origin.Location)
	if distance == 0 {
		return Candidate{}, false
	}

	// Floor the speed at the nominal base so a crawling or stationary
	// vehicle does not blow the estimate up.
	speed := math.Max(sample.SpeedKmh, s.estimator.BaseSpeedKmh)

	return Candidate{
		VehicleID:        vehicleID,
		Number:           s.vehicleNumber(readCtx, vehicleID),
		DistanceKm:       distance,
		Location:         sample.Location,
		SpeedKmh:         sample.SpeedKmh,
		DelayMin:         sample.DelayMin,
		EstimatedArrival: int(math.Round(distance/speed*60)) + sample.DelayMin,
		LastUpdate:       sample.Timestamp,
	}, true
}

func (s *Service) vehicleNumber(ctx context.Context, vehicleID string) string {
	vehicle, err := s.vehicles.VehicleByID(ctx, vehicleID)
	if err != nil {
		return ""
	}
	return vehicle.Number
}

func scheduledVehicleIDs(scheds []models.Schedule) []string {
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
