package domain

import "time"

// RunParameters are the operator-supplied knobs of a simulation run.
// StartTime ("HH:MM") is informational and echoed back unchanged.
type RunParameters struct {
	NumDrivers     int     `json:"numDrivers" yaml:"numDrivers" validate:"gt=0"`
	StartTime      string  `json:"startTime" yaml:"startTime" validate:"required,hhmm"`
	MaxHoursPerDay float64 `json:"maxHoursPerDay" yaml:"maxHoursPerDay" validate:"gt=0,lte=24"`
}

// SimulationMetadata records the inputs a stored result was computed from.
type SimulationMetadata struct {
	NumDrivers       int     `json:"numDrivers"`
	StartTime        string  `json:"startTime"`
	MaxHoursPerDay   float64 `json:"maxHoursPerDay"`
	TotalOrders      int     `json:"totalOrders"`
	TotalRoutes      int     `json:"totalRoutes"`
	AvailableDrivers int     `json:"availableDrivers"`
	// RunBy is the email of the operator who started the run, when known.
	RunBy string `json:"runBy,omitempty"`
}

// SimulationResult is the persisted summary of one run, kept for history lookups.
type SimulationResult struct {
	ID               string
	TotalProfit      float64
	EfficiencyScore  float64
	OnTimeDeliveries int
	LateDeliveries   int
	FuelCost         float64
	Metadata         SimulationMetadata
	CreatedAt        time.Time
}
