package services

import (
	"context"
	"fmt"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/platform/validate"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services/simulation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventSimulationCompleted = "simulation.completed"

	DefaultHistoryLimit = 50
)

// SimulationService loads eligible inputs, runs the engine, and records the result.
type SimulationService struct {
	Drivers ports.DriverRepository
	Routes  ports.RouteRepository
	Orders  ports.OrderRepository
	Results ports.SimulationRepository
	Events  ports.EventPublisher
	Engine  *simulation.Engine
	Now     func() time.Time
}

// SimulationRun is a completed, persisted run.
type SimulationRun struct {
	ID        string
	Report    simulation.Report
	Metadata  domain.SimulationMetadata
	Timestamp time.Time
}

// SystemStatus reports whether enough data exists to run a simulation.
type SystemStatus struct {
	ActiveDrivers int  `json:"activeDrivers"`
	TotalRoutes   int  `json:"totalRoutes"`
	PendingOrders int  `json:"pendingOrders"`
	SystemReady   bool `json:"systemReady"`
}

var simulatableStatuses = []domain.OrderStatus{domain.OrderPending, domain.OrderInTransit}

// ValidateRunParameters returns a *ValidationError listing every invalid field.
func ValidateRunParameters(p domain.RunParameters) error {
	return newValidationError("Invalid simulation parameters", validate.Struct(p))
}

// Run validates params, loads Active drivers (by name), all routes and
// Pending/In Transit orders, scores them, and stores the summary.
func (s *SimulationService) Run(ctx context.Context, params domain.RunParameters) (_ *SimulationRun, err error) {
	defer obs.Time(ctx, "simulation.Run")(&err)

	if err := ValidateRunParameters(params); err != nil {
		return nil, err
	}

	drivers, err := s.Drivers.ListActiveDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list active drivers: %w", err)
	}
	routes, err := s.Routes.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list routes: %w", err)
	}
	orders, err := s.Orders.ListOrdersByStatus(ctx, simulatableStatuses...)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list orders: %w", err)
	}

	if len(drivers) < params.NumDrivers {
		return nil, fmt.Errorf("%w. Requested: %d, Available: %d", ErrNotEnoughDrivers, params.NumDrivers, len(drivers))
	}
	if len(orders) == 0 {
		return nil, ErrNoPendingOrders
	}
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}

	logrus.WithFields(logrus.Fields{
		"req_id":      obs.RequestID(ctx),
		"num_drivers": params.NumDrivers,
		"start_time":  params.StartTime,
		"max_hours":   params.MaxHoursPerDay,
		"orders":      len(orders),
		"routes":      len(routes),
	}).Info("running simulation")

	report := s.engine().Run(orders, drivers, routes, params)

	metadata := domain.SimulationMetadata{
		NumDrivers:       params.NumDrivers,
		StartTime:        params.StartTime,
		MaxHoursPerDay:   params.MaxHoursPerDay,
		TotalOrders:      len(orders),
		TotalRoutes:      len(routes),
		AvailableDrivers: len(drivers),
	}
	if claims, ok := ClaimsFrom(ctx); ok {
		metadata.RunBy = claims.Email
	}

	saved, err := s.Results.SaveResult(ctx, domain.SimulationResult{
		ID:               uuid.New().String(),
		TotalProfit:      report.TotalProfit,
		EfficiencyScore:  report.EfficiencyScore,
		OnTimeDeliveries: report.OnTimeDeliveries,
		LateDeliveries:   report.LateDeliveries,
		FuelCost:         report.FuelCost,
		Metadata:         metadata,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("run simulation: save result: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"id":          saved.ID,
		"profit":      report.TotalProfit,
		"efficiency":  report.EfficiencyScore,
		"on_time":     report.OnTimeDeliveries,
		"late":        report.LateDeliveries,
		"diagnostics": len(report.Diagnostics),
	}).Info("simulation completed")

	run := &SimulationRun{
		ID:        saved.ID,
		Report:    report,
		Metadata:  metadata,
		Timestamp: saved.CreatedAt,
	}

	if s.Events != nil {
		s.Events.Publish(ctx, ports.Event{Type: EventSimulationCompleted, Data: saved})
	}

	return run, nil
}

// History returns up to limit stored results, newest first. limit is
// clamped to (0, DefaultHistoryLimit].
func (s *SimulationService) History(ctx context.Context, limit int) ([]domain.SimulationResult, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	results, err := s.Results.ListResults(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("simulation history: %w", err)
	}
	if results == nil {
		results = []domain.SimulationResult{}
	}
	return results, nil
}

func (s *SimulationService) Status(ctx context.Context) (SystemStatus, error) {
	drivers, err := s.Drivers.CountActiveDrivers(ctx)
	if err != nil {
		return SystemStatus{}, fmt.Errorf("system status: count drivers: %w", err)
	}
	routes, err := s.Routes.CountRoutes(ctx)
	if err != nil {
		return SystemStatus{}, fmt.Errorf("system status: count routes: %w", err)
	}
	orders, err := s.Orders.CountOrdersByStatus(ctx, simulatableStatuses...)
	if err != nil {
		return SystemStatus{}, fmt.Errorf("system status: count orders: %w", err)
	}

	return SystemStatus{
		ActiveDrivers: drivers,
		TotalRoutes:   routes,
		PendingOrders: orders,
		SystemReady:   drivers > 0 && routes > 0 && orders > 0,
	}, nil
}

func (s *SimulationService) engine() *simulation.Engine {
	if s.Engine != nil {
		return s.Engine
	}
	return simulation.NewEngine()
}

func (s *SimulationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
