package handlers

import (
	"net/http"
	"strings"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RouteHandler struct {
	Repo ports.RouteRepository
	// Estimator is nil when no distance provider is configured.
	Estimator ports.DistanceProvider
	Errors    Errors
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to fetch routes")
		return
	}

	res := make([]dto.RouteResponse, 0, len(routes))
	for _, rt := range routes {
		res = append(res, dto.NewRouteResponse(rt))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Repo.GetRoute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Route not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(rt))
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	var missing []string
	if req.RouteID == nil {
		missing = append(missing, "routeId is required")
	}
	if req.DistanceKm == nil {
		missing = append(missing, "distanceKm is required")
	}
	if req.TrafficLevel == nil {
		missing = append(missing, "trafficLevel is required")
	}
	if req.BaseTimeMinutes == nil {
		missing = append(missing, "baseTimeMinutes is required")
	}
	if len(missing) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid route", Problems: missing}, "")
		return
	}

	rt := domain.Route{ID: uuid.New().String()}
	if problems := applyRoute(&rt, req); len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid route", Problems: problems}, "")
		return
	}

	created, err := h.Repo.CreateRoute(r.Context(), rt)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to create route")
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewRouteResponse(created))
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	rt, err := h.Repo.GetRoute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Route not found")
		return
	}
	if problems := applyRoute(&rt, req); len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid route", Problems: problems}, "")
		return
	}

	updated, err := h.Repo.UpdateRoute(r.Context(), rt)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to update route")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(updated))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteRoute(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Errors.Write(w, r, err, "Route not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Route deleted"})
}

// Estimate suggests distanceKm and baseTimeMinutes for a new route.
func (h *RouteHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req dto.EstimateRequest
	if !decodeValid(w, r, &req) {
		return
	}

	estimates, err := services.EstimateRoutes(r.Context(), h.Estimator, req.Origin, []string{req.Destination})
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to estimate route")
		return
	}

	e := estimates[0]
	writeJSON(w, r, http.StatusOK, dto.EstimateResponse{
		Origin:          strings.TrimSpace(req.Origin),
		Destination:     e.Destination,
		DistanceKm:      e.DistanceKm,
		BaseTimeMinutes: e.BaseTimeMinutes,
	})
}

func applyRoute(rt *domain.Route, req dto.RouteRequest) []string {
	var problems []string

	if req.RouteID != nil {
		if code := strings.TrimSpace(*req.RouteID); code != "" {
			rt.Code = code
		} else {
			problems = append(problems, "routeId must not be empty")
		}
	}
	if req.DistanceKm != nil {
		rt.DistanceKm = *req.DistanceKm
	}
	if req.TrafficLevel != nil {
		t := domain.TrafficLevel(*req.TrafficLevel)
		if !t.Valid() {
			problems = append(problems, "trafficLevel must be one of Low, Medium, High")
		} else {
			rt.TrafficLevel = t
		}
	}
	if req.BaseTimeMinutes != nil {
		rt.BaseTimeMinutes = *req.BaseTimeMinutes
	}
	return problems
}
