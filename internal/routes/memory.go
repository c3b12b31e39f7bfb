package routes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu     sync.RWMutex
	routes []Route
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, route *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.routes {
		if existing.RouteID == route.RouteID {
			return ErrDuplicateRoute
		}
	}
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	now := time.Now()
	route.CreatedAt, route.UpdatedAt = now, now
	r.routes = append(r.routes, *route)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if route.ID == id {
			found := route
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) List(_ context.Context, filters Filters) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Route{}
	for i := len(r.routes) - 1; i >= 0; i-- {
		route := r.routes[i]
		if filters.VesselType != "" && route.VesselType != filters.VesselType {
			continue
		}
		if filters.FuelType != "" && route.FuelType != filters.FuelType {
			continue
		}
		if filters.ShipID != "" && route.ShipID != filters.ShipID {
			continue
		}
		if filters.Year != 0 && route.Year != filters.Year {
			continue
		}
		out = append(out, route)
	}
	return out, nil
}

func (r *memoryRepository) Baseline(_ context.Context) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if route.IsBaseline {
			found := route
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) SetBaseline(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := -1
	for i := range r.routes {
		if r.routes[i].ID == id {
			index = i
		}
	}
	if index < 0 {
		return fmt.Errorf("route %s not found", id)
	}
	for i := range r.routes {
		r.routes[i].IsBaseline = i == index
	}
	return nil
}

func (r *memoryRepository) ShipsForYear(_ context.Context, year int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var ships []string
	for _, route := range r.routes {
		if route.Year == year && !seen[route.ShipID] {
			seen[route.ShipID] = true
			ships = append(ships, route.ShipID)
		}
	}
	sort.Strings(ships)
	return ships, nil
}
