// Package dataset reads fleet snapshots (drivers, routes, orders) from JSON
// or YAML files. The same format seeds the database and feeds offline
// simulation runs.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dispatch-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type Driver struct {
	Name                 string              `json:"name" yaml:"name"`
	Status               domain.DriverStatus `json:"status" yaml:"status"`
	CurrentShiftHours    float64             `json:"currentShiftHours" yaml:"currentShiftHours"`
	PastWeekHours        domain.WeekHours    `json:"pastWeekHours" yaml:"pastWeekHours"`
	TotalDeliveriesToday int                 `json:"totalDeliveriesToday" yaml:"totalDeliveriesToday"`
}

type Route struct {
	RouteID         string              `json:"routeId" yaml:"routeId"`
	DistanceKm      float64             `json:"distanceKm" yaml:"distanceKm"`
	TrafficLevel    domain.TrafficLevel `json:"trafficLevel" yaml:"trafficLevel"`
	BaseTimeMinutes float64             `json:"baseTimeMinutes" yaml:"baseTimeMinutes"`
}

// Order references its route by route code (Route.RouteID).
type Order struct {
	OrderID          string             `json:"orderId" yaml:"orderId"`
	CustomerName     string             `json:"customerName" yaml:"customerName"`
	ValueRs          float64            `json:"valueRs" yaml:"valueRs"`
	PickupLocation   string             `json:"pickupLocation" yaml:"pickupLocation"`
	DeliveryLocation string             `json:"deliveryLocation" yaml:"deliveryLocation"`
	RouteID          string             `json:"routeId" yaml:"routeId"`
	Status           domain.OrderStatus `json:"status" yaml:"status"`
	Priority         domain.Priority    `json:"priority" yaml:"priority"`
	OrderDate        time.Time          `json:"orderDate" yaml:"orderDate"`
}

type Dataset struct {
	Drivers []Driver `json:"drivers" yaml:"drivers"`
	Routes  []Route  `json:"routes" yaml:"routes"`
	Orders  []Order  `json:"orders" yaml:"orders"`
}

// Load decodes path as YAML when its extension is .yaml/.yml and as JSON
// otherwise, applies defaults, and validates the result.
func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: read %q: %w", path, err)
	}

	var ds Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &ds)
	default:
		err = json.Unmarshal(b, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset: parse %q: %w", path, err)
	}

	ds.applyDefaults()
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", path, err)
	}
	return &ds, nil
}

func (d *Dataset) applyDefaults() {
	for i := range d.Drivers {
		dr := &d.Drivers[i]
		dr.Name = strings.TrimSpace(dr.Name)
		if dr.Status == "" {
			dr.Status = domain.DriverActive
		}
		dr.PastWeekHours = domain.NormalizeWeekHours(dr.PastWeekHours)
	}
	for i := range d.Routes {
		d.Routes[i].RouteID = strings.TrimSpace(d.Routes[i].RouteID)
	}
	for i := range d.Orders {
		o := &d.Orders[i]
		o.OrderID = strings.TrimSpace(o.OrderID)
		o.RouteID = strings.TrimSpace(o.RouteID)
		if o.Status == "" {
			o.Status = domain.OrderPending
		}
		if o.Priority == "" {
			o.Priority = domain.PriorityMedium
		}
	}
}

// Validate reports every structural problem at once. Orders whose route code
// is unknown are allowed; the engine skips them.
func (d *Dataset) Validate() error {
	var errs []error

	for i, dr := range d.Drivers {
		if dr.Name == "" {
			errs = append(errs, fmt.Errorf("drivers[%d]: name is required", i))
		}
		if !dr.Status.Valid() {
			errs = append(errs, fmt.Errorf("drivers[%d]: invalid status %q", i, dr.Status))
		}
		if dr.CurrentShiftHours < 0 {
			errs = append(errs, fmt.Errorf("drivers[%d]: currentShiftHours must not be negative", i))
		}
	}

	codes := make(map[string]struct{}, len(d.Routes))
	for i, r := range d.Routes {
		if r.RouteID == "" {
			errs = append(errs, fmt.Errorf("routes[%d]: routeId is required", i))
		}
		if _, dup := codes[r.RouteID]; dup {
			errs = append(errs, fmt.Errorf("routes[%d]: duplicate routeId %q", i, r.RouteID))
		}
		codes[r.RouteID] = struct{}{}
		if r.DistanceKm <= 0 {
			errs = append(errs, fmt.Errorf("routes[%d]: distanceKm must be positive", i))
		}
		if r.BaseTimeMinutes <= 0 {
			errs = append(errs, fmt.Errorf("routes[%d]: baseTimeMinutes must be positive", i))
		}
		if !r.TrafficLevel.Valid() {
			errs = append(errs, fmt.Errorf("routes[%d]: invalid trafficLevel %q", i, r.TrafficLevel))
		}
	}

	orderIDs := make(map[string]struct{}, len(d.Orders))
	for i, o := range d.Orders {
		if o.OrderID == "" {
			errs = append(errs, fmt.Errorf("orders[%d]: orderId is required", i))
		}
		if _, dup := orderIDs[o.OrderID]; dup {
			errs = append(errs, fmt.Errorf("orders[%d]: duplicate orderId %q", i, o.OrderID))
		}
		orderIDs[o.OrderID] = struct{}{}
		if o.ValueRs < 0 {
			errs = append(errs, fmt.Errorf("orders[%d]: valueRs must not be negative", i))
		}
		if !o.Status.Valid() {
			errs = append(errs, fmt.Errorf("orders[%d]: invalid status %q", i, o.Status))
		}
		if !o.Priority.Valid() {
			errs = append(errs, fmt.Errorf("orders[%d]: invalid priority %q", i, o.Priority))
		}
	}

	return errors.Join(errs...)
}

// DomainDrivers maps every driver in file order. Ids are "driver-N" by
// position, so they stay stable across loads of the same file.
func (d *Dataset) DomainDrivers() []domain.Driver {
	out := make([]domain.Driver, 0, len(d.Drivers))
	for i, dr := range d.Drivers {
		out = append(out, domain.Driver{
			ID:                   fmt.Sprintf("driver-%d", i+1),
			Name:                 dr.Name,
			Status:               dr.Status,
			CurrentShiftHours:    dr.CurrentShiftHours,
			PastWeekHours:        domain.NormalizeWeekHours(dr.PastWeekHours),
			TotalDeliveriesToday: dr.TotalDeliveriesToday,
		})
	}
	return out
}

// DomainRoutes uses the route code as the route identity.
func (d *Dataset) DomainRoutes() []domain.Route {
	out := make([]domain.Route, 0, len(d.Routes))
	for _, r := range d.Routes {
		out = append(out, domain.Route{
			ID:              r.RouteID,
			Code:            r.RouteID,
			DistanceKm:      r.DistanceKm,
			TrafficLevel:    r.TrafficLevel,
			BaseTimeMinutes: r.BaseTimeMinutes,
		})
	}
	return out
}

// DomainOrders maps every order in file order. The order code doubles as the
// storage id and the route code as the route reference, matching DomainRoutes.
func (d *Dataset) DomainOrders() []domain.Order {
	out := make([]domain.Order, 0, len(d.Orders))
	for _, o := range d.Orders {
		out = append(out, domain.Order{
			ID:               o.OrderID,
			OrderID:          o.OrderID,
			CustomerName:     o.CustomerName,
			ValueRs:          o.ValueRs,
			PickupLocation:   o.PickupLocation,
			DeliveryLocation: o.DeliveryLocation,
			RouteID:          o.RouteID,
			RouteCode:        o.RouteID,
			Status:           o.Status,
			Priority:         o.Priority,
			OrderDate:        o.OrderDate,
		})
	}
	return out
}
