package dto

import (
	"time"

	"dispatch-service/internal/domain"
)

// OrderRequest is used for create and partial update. AssignedRoute and
// AssignedDriver carry storage ids; an empty AssignedDriver clears the assignment.
type OrderRequest struct {
	OrderID                      *string    `json:"orderId" validate:"omitempty,min=1"`
	CustomerName                 *string    `json:"customerName" validate:"omitempty,min=1"`
	ValueRs                      *float64   `json:"valueRs" validate:"omitempty,gt=0"`
	PickupLocation               *string    `json:"pickupLocation" validate:"omitempty,min=1"`
	DeliveryLocation             *string    `json:"deliveryLocation" validate:"omitempty,min=1"`
	AssignedRoute                *string    `json:"assignedRoute"`
	AssignedDriver               *string    `json:"assignedDriver"`
	Status                       *string    `json:"status"`
	Priority                     *string    `json:"priorityLevel"`
	EstimatedDeliveryTimeMinutes *float64   `json:"estimatedDeliveryTimeMinutes" validate:"omitempty,gte=0"`
	ActualDeliveryTimeMinutes    *float64   `json:"actualDeliveryTimeMinutes" validate:"omitempty,gte=0"`
	OrderDate                    *time.Time `json:"orderDate"`
	DeliveryTimestamp            *time.Time `json:"deliveryTimestamp"`
}

type OrderResponse struct {
	ID                           string     `json:"id"`
	OrderID                      string     `json:"orderId"`
	CustomerName                 string     `json:"customerName"`
	ValueRs                      float64    `json:"valueRs"`
	PickupLocation               string     `json:"pickupLocation"`
	DeliveryLocation             string     `json:"deliveryLocation"`
	AssignedRoute                string     `json:"assignedRoute"`
	RouteCode                    string     `json:"routeCode,omitempty"`
	AssignedDriver               *string    `json:"assignedDriver"`
	AssignedDriverName           string     `json:"assignedDriverName,omitempty"`
	Status                       string     `json:"status"`
	Priority                     string     `json:"priorityLevel"`
	EstimatedDeliveryTimeMinutes *float64   `json:"estimatedDeliveryTimeMinutes"`
	ActualDeliveryTimeMinutes    *float64   `json:"actualDeliveryTimeMinutes"`
	OrderDate                    time.Time  `json:"orderDate"`
	DeliveryTimestamp            *time.Time `json:"deliveryTimestamp"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:                           o.ID,
		OrderID:                      o.OrderID,
		CustomerName:                 o.CustomerName,
		ValueRs:                      o.ValueRs,
		PickupLocation:               o.PickupLocation,
		DeliveryLocation:             o.DeliveryLocation,
		AssignedRoute:                o.RouteID,
		RouteCode:                    o.RouteCode,
		AssignedDriver:               o.AssignedDriverID,
		AssignedDriverName:           o.AssignedDriverName,
		Status:                       string(o.Status),
		Priority:                     string(o.Priority),
		EstimatedDeliveryTimeMinutes: o.EstimatedDeliveryTimeMinutes,
		ActualDeliveryTimeMinutes:    o.ActualDeliveryTimeMinutes,
		OrderDate:                    o.OrderDate,
		DeliveryTimestamp:            o.DeliveryTimestamp,
	}
}
