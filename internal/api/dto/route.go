package dto

import "dispatch-service/internal/domain"

type RouteRequest struct {
	RouteID         *string  `json:"routeId" validate:"omitempty,min=1"`
	DistanceKm      *float64 `json:"distanceKm" validate:"omitempty,gt=0"`
	TrafficLevel    *string  `json:"trafficLevel"`
	BaseTimeMinutes *float64 `json:"baseTimeMinutes" validate:"omitempty,gt=0"`
}

type RouteResponse struct {
	ID              string  `json:"id"`
	RouteID         string  `json:"routeId"`
	DistanceKm      float64 `json:"distanceKm"`
	TrafficLevel    string  `json:"trafficLevel"`
	BaseTimeMinutes float64 `json:"baseTimeMinutes"`
}

func NewRouteResponse(r domain.Route) RouteResponse {
	return RouteResponse{
		ID:              r.ID,
		RouteID:         r.Code,
		DistanceKm:      r.DistanceKm,
		TrafficLevel:    string(r.TrafficLevel),
		BaseTimeMinutes: r.BaseTimeMinutes,
	}
}

// EstimateRequest asks for a suggested distance and base time between two places.
type EstimateRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

type EstimateResponse struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DistanceKm      float64 `json:"distanceKm"`
	BaseTimeMinutes float64 `json:"baseTimeMinutes"`
}
