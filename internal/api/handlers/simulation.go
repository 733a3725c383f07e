package handlers

import (
	"context"
	"net/http"
	"strconv"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/services"
)

// SimulationRunner is the part of services.SimulationService the handler uses.
type SimulationRunner interface {
	Run(ctx context.Context, params domain.RunParameters) (*services.SimulationRun, error)
	History(ctx context.Context, limit int) ([]domain.SimulationResult, error)
	Status(ctx context.Context) (services.SystemStatus, error)
}

type SimulationHandler struct {
	Service SimulationRunner
	Errors  Errors
}

// Run executes a simulation. Per-order details are included only with ?details=true.
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var params domain.RunParameters
	if !decodeJSON(w, r, &params) {
		return
	}

	run, err := h.Service.Run(r.Context(), params)
	if err != nil {
		h.Errors.Write(w, r, err, "Simulation failed")
		return
	}

	data := dto.SimulationRun{
		ID:                run.ID,
		TotalProfit:       run.Report.TotalProfit,
		EfficiencyScore:   run.Report.EfficiencyScore,
		OnTimeDeliveries:  run.Report.OnTimeDeliveries,
		LateDeliveries:    run.Report.LateDeliveries,
		FuelCost:          run.Report.FuelCost,
		DriverUtilization: run.Report.DriverUtilization,
		Diagnostics:       run.Report.Diagnostics,
		SimulationParams:  run.Metadata,
		Timestamp:         run.Timestamp,
	}
	if details, _ := strconv.ParseBool(r.URL.Query().Get("details")); details {
		data.Details = run.Report.Details
	}

	writeJSON(w, r, http.StatusOK, dto.SimulationRunResponse{
		Message: "Simulation completed successfully",
		Data:    data,
	})
}

func (h *SimulationHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	results, err := h.Service.History(r.Context(), limit)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to fetch simulation history")
		return
	}

	res := make([]dto.SimulationHistoryItem, 0, len(results))
	for _, item := range results {
		res = append(res, dto.NewSimulationHistoryItem(item))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.Status(r.Context())
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to fetch system status")
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}
