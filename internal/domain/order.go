package domain

import "time"

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderInTransit OrderStatus = "In Transit"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInTransit, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Simulatable reports whether orders in this status take part in a simulation run.
func (s OrderStatus) Simulatable() bool {
	return s == OrderPending || s == OrderInTransit
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Order is a single customer delivery. RouteID references Route.ID.
// RouteCode and AssignedDriverName are read-side joins and are ignored on write.
type Order struct {
	ID                           string
	OrderID                      string
	CustomerName                 string
	ValueRs                      float64
	PickupLocation               string
	DeliveryLocation             string
	RouteID                      string
	AssignedDriverID             *string
	Status                       OrderStatus
	Priority                     Priority
	EstimatedDeliveryTimeMinutes *float64
	ActualDeliveryTimeMinutes    *float64
	OrderDate                    time.Time
	DeliveryTimestamp            *time.Time

	RouteCode          string
	AssignedDriverName string
}
