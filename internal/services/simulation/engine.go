// Package simulation scores a batch of pending orders against a fleet.
//
// The engine is a pure function of its inputs: it builds its own per-run
// driver workloads, never mutates the supplied drivers, routes or orders,
// and produces the same Report for the same inputs in the same order.
// It does not search for a better assignment; orders are handed out by a
// fixed Strategy and the result is scored.
package simulation

import (
	"fmt"
	"io"

	"dispatch-service/internal/domain"

	"github.com/sirupsen/logrus"
)

type Engine struct {
	Rules    RuleSet
	Strategy Strategy
	Log      logrus.FieldLogger
}

// NewEngine returns an engine with the default rules, round-robin
// assignment, and a discarding logger.
func NewEngine() *Engine {
	return &Engine{
		Rules:    DefaultRules(),
		Strategy: RoundRobin,
		Log:      discardLogger(),
	}
}

// Run scores orders with the default engine.
func Run(orders []domain.Order, drivers []domain.Driver, routes []domain.Route, params domain.RunParameters) Report {
	return NewEngine().Run(orders, drivers, routes, params)
}

// Run assigns each order to one of the first params.NumDrivers drivers and
// applies the fatigue, lateness, fuel, bonus and profit rules. Orders whose
// route cannot be resolved are skipped and reported as diagnostics.
func (e *Engine) Run(orders []domain.Order, drivers []domain.Driver, routes []domain.Route, params domain.RunParameters) Report {
	log := e.Log
	if log == nil {
		log = discardLogger()
	}

	report := Report{
		DriverUtilization: []DriverUtilization{},
		Details:           []OrderOutcome{},
		Diagnostics:       []Diagnostic{},
		Params:            params,
	}
	if len(orders) == 0 {
		return report
	}

	workloads := e.buildWorkloads(drivers, params.NumDrivers)

	routeByID := make(map[string]domain.Route, len(routes))
	for _, r := range routes {
		// First occurrence wins when ids repeat.
		if _, ok := routeByID[r.ID]; !ok {
			routeByID[r.ID] = r
		}
	}

	var (
		totalProfit float64
		totalFuel   float64
		onTime      int
		late        int
	)

	for i, order := range orders {
		route, ok := routeByID[order.RouteID]
		if !ok {
			d := Diagnostic{
				Kind:     DiagRouteNotFound,
				OrderID:  order.OrderID,
				RouteRef: order.RouteID,
				Message:  fmt.Sprintf("route not found for order %s", order.OrderID),
			}
			report.Diagnostics = append(report.Diagnostics, d)
			log.WithFields(logrus.Fields{"order_id": order.OrderID, "route_id": order.RouteID}).Warn("simulation: route not found, order skipped")
			continue
		}

		if len(workloads) == 0 {
			d := Diagnostic{
				Kind:      DiagNoDriverAvailable,
				OrderID:   order.OrderID,
				RouteRef:  order.RouteID,
				RouteCode: route.Code,
				Message:   fmt.Sprintf("no driver selected for order %s", order.OrderID),
			}
			report.Diagnostics = append(report.Diagnostics, d)
			log.WithField("order_id", order.OrderID).Warn("simulation: no driver available, order skipped")
			continue
		}

		driver := workloads[e.strategy().pick(i, workloads)]

		nominalHours := route.BaseTimeMinutes / 60
		if driver.HoursWorked+nominalHours > params.MaxHoursPerDay {
			d := Diagnostic{
				Kind:       DiagMaxHoursExceeded,
				OrderID:    order.OrderID,
				RouteRef:   order.RouteID,
				RouteCode:  route.Code,
				DriverName: driver.Name,
				Message:    fmt.Sprintf("driver %s would exceed max hours", driver.Name),
			}
			report.Diagnostics = append(report.Diagnostics, d)
			log.WithFields(logrus.Fields{
				"driver":       driver.Name,
				"hours_worked": driver.HoursWorked,
				"max_hours":    params.MaxHoursPerDay,
				"order_id":     order.OrderID,
			}).Warn("simulation: driver would exceed max hours")
		}

		actual := e.Rules.ActualDeliveryTime(route.BaseTimeMinutes, driver.IsFatigued)
		allowed := e.Rules.AllowedTime(route.BaseTimeMinutes)
		isLate := actual > allowed
		if isLate {
			late++
		} else {
			onTime++
		}

		penalty := e.Rules.Penalty(isLate)
		fuel := e.Rules.FuelCost(route)
		bonus := e.Rules.Bonus(order.ValueRs, isLate)
		profit := order.ValueRs + bonus - penalty - fuel

		totalFuel += fuel
		totalProfit += profit

		// Accrual uses the nominal duration, not the fatigue-adjusted one.
		driver.HoursWorked += nominalHours
		driver.DeliveriesToday++

		report.Details = append(report.Details, OrderOutcome{
			OrderID:            order.OrderID,
			DriverID:           driver.DriverID,
			DriverName:         driver.Name,
			RouteID:            route.ID,
			RouteCode:          route.Code,
			OrderValue:         order.ValueRs,
			FuelCost:           fuel,
			HighValueBonus:     bonus,
			DeliveryPenalty:    penalty,
			OrderProfit:        profit,
			IsLate:             isLate,
			ActualDeliveryTime: actual,
			AllowedTime:        allowed,
		})
	}

	var efficiency float64
	if total := onTime + late; total > 0 {
		efficiency = float64(onTime) / float64(total) * 100
	}

	report.TotalProfit = round2(totalProfit)
	report.EfficiencyScore = round2(efficiency)
	report.OnTimeDeliveries = onTime
	report.LateDeliveries = late
	report.FuelCost = round2(totalFuel)
	for _, w := range workloads {
		report.DriverUtilization = append(report.DriverUtilization, DriverUtilization{
			Name:            w.Name,
			HoursWorked:     round2(w.HoursWorked),
			DeliveriesToday: w.DeliveriesToday,
		})
	}

	return report
}

// buildWorkloads selects the first n drivers in input order.
func (e *Engine) buildWorkloads(drivers []domain.Driver, n int) []*DriverWorkload {
	if n > len(drivers) {
		n = len(drivers)
	}
	if n < 0 {
		n = 0
	}

	workloads := make([]*DriverWorkload, 0, n)
	for _, d := range drivers[:n] {
		week := make([]float64, len(d.PastWeekHours))
		copy(week, d.PastWeekHours)

		workloads = append(workloads, &DriverWorkload{
			DriverID:      d.ID,
			Name:          d.Name,
			HoursWorked:   d.CurrentShiftHours,
			PastWeekHours: week,
			IsFatigued:    e.Rules.IsFatigued(d.CurrentShiftHours),
		})
	}
	return workloads
}

func (e *Engine) strategy() Strategy {
	if e.Strategy == "" {
		return RoundRobin
	}
	return e.Strategy
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
