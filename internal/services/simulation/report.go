package simulation

import "dispatch-service/internal/domain"

// DriverWorkload is the per-run accrual state of one selected driver.
// IsFatigued is fixed when the workload is built and never recomputed.
type DriverWorkload struct {
	DriverID        string
	Name            string
	HoursWorked     float64
	PastWeekHours   []float64
	DeliveriesToday int
	IsFatigued      bool
}

// OrderOutcome is the scored result of one processed order.
type OrderOutcome struct {
	OrderID            string  `json:"orderId"`
	DriverID           string  `json:"driverId"`
	DriverName         string  `json:"driverName"`
	RouteID            string  `json:"routeId"`
	RouteCode          string  `json:"routeCode"`
	OrderValue         float64 `json:"orderValue"`
	FuelCost           float64 `json:"fuelCost"`
	HighValueBonus     float64 `json:"highValueBonus"`
	DeliveryPenalty    float64 `json:"deliveryPenalty"`
	OrderProfit        float64 `json:"orderProfit"`
	IsLate             bool    `json:"isLate"`
	ActualDeliveryTime float64 `json:"actualDeliveryTime"`
	AllowedTime        float64 `json:"allowedTime"`
}

// DriverUtilization summarizes one driver's load after the run.
type DriverUtilization struct {
	Name            string  `json:"name"`
	HoursWorked     float64 `json:"hoursWorked"`
	DeliveriesToday int     `json:"deliveriesToday"`
}

type DiagnosticKind string

const (
	DiagRouteNotFound     DiagnosticKind = "route_not_found"
	DiagMaxHoursExceeded  DiagnosticKind = "max_hours_exceeded"
	DiagNoDriverAvailable DiagnosticKind = "no_driver_available"
)

// Diagnostic records a skipped order or an advisory threshold breach.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	OrderID string         `json:"orderId"`
	// RouteRef is the route reference stored on the order.
	RouteRef string `json:"routeRef,omitempty"`
	// RouteCode is set once RouteRef resolved to a route.
	RouteCode  string `json:"routeCode,omitempty"`
	DriverName string `json:"driverName,omitempty"`
	Message    string `json:"message"`
}

// Report is the immutable outcome of a run. Currency and score totals
// are rounded to 2 decimal places; Details keep full precision.
type Report struct {
	TotalProfit       float64              `json:"totalProfit"`
	EfficiencyScore   float64              `json:"efficiencyScore"`
	OnTimeDeliveries  int                  `json:"onTimeDeliveries"`
	LateDeliveries    int                  `json:"lateDeliveries"`
	FuelCost          float64              `json:"fuelCost"`
	DriverUtilization []DriverUtilization  `json:"driverUtilization"`
	Details           []OrderOutcome       `json:"details,omitempty"`
	Diagnostics       []Diagnostic         `json:"diagnostics"`
	Params            domain.RunParameters `json:"params"`
}

// Processed is the number of orders that were scored.
func (r Report) Processed() int {
	return r.OnTimeDeliveries + r.LateDeliveries
}
