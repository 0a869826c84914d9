// Package refdata holds the read-only reference data the engine consumes:
// routes with their ordered stops, schedules, and vehicles. The data is
// created and edited by an external administrative collaborator; this store
// is its in-process stand-in and is immutable after loading.
package refdata

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pulse.busmetro.org/internal/models"
)

type Store struct {
	mu        sync.RWMutex
	routes    map[string]*models.Route
	schedules map[string][]models.Schedule // keyed by route ID
	vehicles  map[string]*models.Vehicle
}

func NewStore() *Store {
	return &Store{
		routes:    make(map[string]*models.Route),
		schedules: make(map[string][]models.Schedule),
		vehicles:  make(map[string]*models.Vehicle),
	}
}

// AddRoute stores a route, sorting its stops by index.
func (s *Store) AddRoute(route models.Route) {
	sort.Slice(route.Stops, func(i, j int) bool {
		return route.Stops[i].Index < route.Stops[j].Index
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route.ID] = &route
}

// AddSchedule stores a schedule after validating its invariants.
func (s *Store) AddSchedule(schedule models.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("schedule %s: %w", schedule.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[schedule.RouteID] = append(s.schedules[schedule.RouteID], schedule)
	return nil
}

func (s *Store) AddVehicle(vehicle models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[vehicle.ID] = &vehicle
}

// RouteByID returns the route with its ordered stops, or
// models.ErrNotFound.
func (s *Store) RouteByID(ctx context.Context, id string) (*models.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	route, ok := s.routes[id]
	if !ok {
		return nil, fmt.Errorf("route %s: %w", id, models.ErrNotFound)
	}
	return route, nil
}

// Routes returns every route, optionally filtered by city.
func (s *Store) Routes(ctx context.Context, city string) ([]*models.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Route
	for _, route := range s.routes {
		if city != "" && route.City != city {
			continue
		}
		result = append(result, route)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SchedulesForRoute returns all schedules bound to the route.
func (s *Store) SchedulesForRoute(ctx context.Context, routeID string) ([]models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules[routeID], nil
}

// VehicleByID returns the vehicle, or models.ErrNotFound.
func (s *Store) VehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
	}
	return vehicle, nil
}

// Statistics summarizes the loaded data for startup logging.
func (s *Store) Statistics() (routes, stops, schedules, vehicles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, route := range s.routes {
		stops += len(route.Stops)
	}
	for _, list := range s.schedules {
		schedules += len(list)
	}
	return len(s.routes), stops, schedules, len(s.vehicles)
}
