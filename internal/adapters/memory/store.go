// Package memory holds repositories backed by process memory. The CLI uses
// it for offline simulation runs over a dataset file.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"dispatch-service/internal/dataset"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

// Store implements every repository port with the same orderings as the
// Postgres adapter.
type Store struct {
	mu      sync.RWMutex
	drivers []domain.Driver
	routes  []domain.Route
	orders  []domain.Order
	results []domain.SimulationResult
	users   []domain.User
}

func NewStore() *Store {
	return &Store{}
}

// FromDataset loads a dataset with route codes as route ids.
func FromDataset(ds *dataset.Dataset) *Store {
	return &Store{
		drivers: ds.DomainDrivers(),
		routes:  ds.DomainRoutes(),
		orders:  ds.DomainOrders(),
	}
}

func (s *Store) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(slices.Clone(s.drivers)), nil
}

func (s *Store) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Driver
	for _, d := range s.drivers {
		if d.Status == domain.DriverActive {
			out = append(out, d)
		}
	}
	return sortedByName(out), nil
}

func (s *Store) GetDriver(ctx context.Context, id string) (domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.drivers, func(d domain.Driver) bool { return d.ID == id })
	if i < 0 {
		return domain.Driver{}, fmt.Errorf("get driver %q: %w", id, ports.ErrNotFound)
	}
	return s.drivers[i], nil
}

func (s *Store) CreateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.drivers, func(x domain.Driver) bool { return x.ID == d.ID }) {
		return domain.Driver{}, fmt.Errorf("create driver %q: %w", d.ID, ports.ErrConflict)
	}
	d.PastWeekHours = domain.NormalizeWeekHours(d.PastWeekHours)
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.drivers = append(s.drivers, d)
	return d, nil
}

func (s *Store) UpdateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.drivers, func(x domain.Driver) bool { return x.ID == d.ID })
	if i < 0 {
		return domain.Driver{}, fmt.Errorf("update driver %q: %w", d.ID, ports.ErrNotFound)
	}
	d.PastWeekHours = domain.NormalizeWeekHours(d.PastWeekHours)
	d.UpdatedAt = time.Now().UTC()
	s.drivers[i] = d
	return d, nil
}

func (s *Store) DeleteDriver(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.drivers)
	s.drivers = slices.DeleteFunc(s.drivers, func(d domain.Driver) bool { return d.ID == id })
	if len(s.drivers) == n {
		return fmt.Errorf("delete driver %q: %w", id, ports.ErrNotFound)
	}
	for i := range s.orders {
		if s.orders[i].AssignedDriverID != nil && *s.orders[i].AssignedDriverID == id {
			s.orders[i].AssignedDriverID = nil
		}
	}
	return nil
}

func (s *Store) CountActiveDrivers(ctx context.Context) (int, error) {
	drivers, _ := s.ListActiveDrivers(ctx)
	return len(drivers), nil
}

func (s *Store) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.routes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) GetRoute(ctx context.Context, id string) (domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.routes, func(r domain.Route) bool { return r.ID == id })
	if i < 0 {
		return domain.Route{}, fmt.Errorf("get route %q: %w", id, ports.ErrNotFound)
	}
	return s.routes[i], nil
}

func (s *Store) CreateRoute(ctx context.Context, r domain.Route) (domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.routes, func(x domain.Route) bool { return x.ID == r.ID || x.Code == r.Code }) {
		return domain.Route{}, fmt.Errorf("create route %q: %w", r.Code, ports.ErrConflict)
	}
	s.routes = append(s.routes, r)
	return r, nil
}

func (s *Store) UpdateRoute(ctx context.Context, r domain.Route) (domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.routes, func(x domain.Route) bool { return x.ID == r.ID })
	if i < 0 {
		return domain.Route{}, fmt.Errorf("update route %q: %w", r.ID, ports.ErrNotFound)
	}
	if slices.ContainsFunc(s.routes, func(x domain.Route) bool { return x.ID != r.ID && x.Code == r.Code }) {
		return domain.Route{}, fmt.Errorf("update route %q: %w", r.Code, ports.ErrConflict)
	}
	s.routes[i] = r
	return r, nil
}

// DeleteRoute refuses while orders reference the route, like the SQL schema.
func (s *Store) DeleteRoute(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.orders, func(o domain.Order) bool { return o.RouteID == id }) {
		return fmt.Errorf("delete route %q: referenced by orders: %w", id, ports.ErrConflict)
	}
	n := len(s.routes)
	s.routes = slices.DeleteFunc(s.routes, func(r domain.Route) bool { return r.ID == id })
	if len(s.routes) == n {
		return fmt.Errorf("delete route %q: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) CountRoutes(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.routes), nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, s.joined(o))
	}
	return out, nil
}

// ListOrdersByStatus orders by order date, then order code, like the SQL adapter.
func (s *Store) ListOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, o := range s.orders {
		if slices.Contains(statuses, o.Status) {
			out = append(out, s.joined(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.Before(out[j].OrderDate)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.orders, func(o domain.Order) bool { return o.ID == id })
	if i < 0 {
		return domain.Order{}, fmt.Errorf("get order %q: %w", id, ports.ErrNotFound)
	}
	return s.joined(s.orders[i]), nil
}

func (s *Store) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.orders, func(x domain.Order) bool { return x.ID == o.ID || x.OrderID == o.OrderID }) {
		return domain.Order{}, fmt.Errorf("create order %q: %w", o.OrderID, ports.ErrConflict)
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	s.orders = append(s.orders, o)
	return s.joined(o), nil
}

func (s *Store) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.orders, func(x domain.Order) bool { return x.ID == o.ID })
	if i < 0 {
		return domain.Order{}, fmt.Errorf("update order %q: %w", o.ID, ports.ErrNotFound)
	}
	s.orders[i] = o
	return s.joined(o), nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.orders)
	s.orders = slices.DeleteFunc(s.orders, func(o domain.Order) bool { return o.ID == id })
	if len(s.orders) == n {
		return fmt.Errorf("delete order %q: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) CountOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) (int, error) {
	orders, _ := s.ListOrdersByStatus(ctx, statuses...)
	return len(orders), nil
}

func (s *Store) SaveResult(ctx context.Context, r domain.SimulationResult) (domain.SimulationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.results = append(s.results, r)
	return r, nil
}

// ListResults returns newest first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]domain.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.results)
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
	if i < 0 {
		return domain.User{}, fmt.Errorf("get user %q: %w", email, ports.ErrNotFound)
	}
	return s.users[i], nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.users, func(x domain.User) bool { return strings.EqualFold(x.Email, u.Email) }) {
		return domain.User{}, fmt.Errorf("create user %q: %w", u.Email, ports.ErrConflict)
	}
	s.users = append(s.users, u)
	return u, nil
}

// joined fills the read-side route code and driver name. Callers hold mu.
func (s *Store) joined(o domain.Order) domain.Order {
	if i := slices.IndexFunc(s.routes, func(r domain.Route) bool { return r.ID == o.RouteID }); i >= 0 {
		o.RouteCode = s.routes[i].Code
	}
	o.AssignedDriverName = ""
	if o.AssignedDriverID != nil {
		if i := slices.IndexFunc(s.drivers, func(d domain.Driver) bool { return d.ID == *o.AssignedDriverID }); i >= 0 {
			o.AssignedDriverName = s.drivers[i].Name
		}
	}
	return o
}

func sortedByName(drivers []domain.Driver) []domain.Driver {
	sort.SliceStable(drivers, func(i, j int) bool { return drivers[i].Name < drivers[j].Name })
	return drivers
}

var (
	_ ports.DriverRepository     = (*Store)(nil)
	_ ports.RouteRepository      = (*Store)(nil)
	_ ports.OrderRepository      = (*Store)(nil)
	_ ports.SimulationRepository = (*Store)(nil)
	_ ports.UserRepository       = (*Store)(nil)
)
