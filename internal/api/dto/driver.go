package dto

import (
	"time"

	"dispatch-service/internal/domain"
)

// DriverRequest is used for create and partial update; nil fields are left unchanged.
type DriverRequest struct {
	Name                 *string           `json:"name" validate:"omitempty,min=1"`
	Status               *string           `json:"status"`
	CurrentShiftHours    *float64          `json:"currentShiftHours" validate:"omitempty,gte=0,lte=24"`
	PastWeekHours        *domain.WeekHours `json:"pastWeekHours"`
	TotalDeliveriesToday *int              `json:"totalDeliveriesToday" validate:"omitempty,gte=0"`
}

type DriverResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Status               string    `json:"status"`
	CurrentShiftHours    float64   `json:"currentShiftHours"`
	PastWeekHours        []float64 `json:"pastWeekHours"`
	TotalDeliveriesToday int       `json:"totalDeliveriesToday"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func NewDriverResponse(d domain.Driver) DriverResponse {
	return DriverResponse{
		ID:                   d.ID,
		Name:                 d.Name,
		Status:               string(d.Status),
		CurrentShiftHours:    d.CurrentShiftHours,
		PastWeekHours:        domain.NormalizeWeekHours(d.PastWeekHours),
		TotalDeliveriesToday: d.TotalDeliveriesToday,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}
