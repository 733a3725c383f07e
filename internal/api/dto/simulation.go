package dto

import (
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/services/simulation"
)

// SimulationRun is the body of a successful POST /api/simulation.
type SimulationRun struct {
	ID                string                         `json:"id"`
	TotalProfit       float64                        `json:"totalProfit"`
	EfficiencyScore   float64                        `json:"efficiencyScore"`
	OnTimeDeliveries  int                            `json:"onTimeDeliveries"`
	LateDeliveries    int                            `json:"lateDeliveries"`
	FuelCost          float64                        `json:"fuelCost"`
	DriverUtilization []simulation.DriverUtilization `json:"driverUtilization"`
	Details           []simulation.OrderOutcome      `json:"details,omitempty"`
	Diagnostics       []simulation.Diagnostic        `json:"diagnostics"`
	SimulationParams  domain.SimulationMetadata      `json:"simulationParams"`
	Timestamp         time.Time                      `json:"timestamp"`
}

type SimulationRunResponse struct {
	Message string        `json:"message"`
	Data    SimulationRun `json:"data"`
}

type SimulationHistoryItem struct {
	ID               string                    `json:"id"`
	TotalProfit      float64                   `json:"totalProfit"`
	EfficiencyScore  float64                   `json:"efficiencyScore"`
	OnTimeDeliveries int                       `json:"onTimeDeliveries"`
	LateDeliveries   int                       `json:"lateDeliveries"`
	FuelCost         float64                   `json:"fuelCost"`
	CreatedAt        time.Time                 `json:"createdAt"`
	Metadata         domain.SimulationMetadata `json:"metadata"`
}

func NewSimulationHistoryItem(r domain.SimulationResult) SimulationHistoryItem {
	return SimulationHistoryItem{
		ID:               r.ID,
		TotalProfit:      r.TotalProfit,
		EfficiencyScore:  r.EfficiencyScore,
		OnTimeDeliveries: r.OnTimeDeliveries,
		LateDeliveries:   r.LateDeliveries,
		FuelCost:         r.FuelCost,
		CreatedAt:        r.CreatedAt,
		Metadata:         r.Metadata,
	}
}
