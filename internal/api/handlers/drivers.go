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

type DriverHandler struct {
	Repo   ports.DriverRepository
	Errors Errors
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Repo.ListDrivers(r.Context())
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to fetch drivers")
		return
	}

	res := make([]dto.DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		res = append(res, dto.NewDriverResponse(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Repo.GetDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Driver not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDriverResponse(d))
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DriverRequest
	if !decodeValid(w, r, &req) {
		return
	}

	d := domain.Driver{
		ID:            uuid.New().String(),
		Status:        domain.DriverActive,
		PastWeekHours: domain.NormalizeWeekHours(nil),
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid driver", Problems: []string{"name is required"}}, "")
		return
	}
	if problems := applyDriver(&d, req); len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid driver", Problems: problems}, "")
		return
	}

	created, err := h.Repo.CreateDriver(r.Context(), d)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to create driver")
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewDriverResponse(created))
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.DriverRequest
	if !decodeValid(w, r, &req) {
		return
	}

	d, err := h.Repo.GetDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Driver not found")
		return
	}
	if problems := applyDriver(&d, req); len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid driver", Problems: problems}, "")
		return
	}

	updated, err := h.Repo.UpdateDriver(r.Context(), d)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to update driver")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDriverResponse(updated))
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteDriver(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Errors.Write(w, r, err, "Driver not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Driver deleted"})
}

// applyDriver copies the non-nil request fields onto d.
func applyDriver(d *domain.Driver, req dto.DriverRequest) []string {
	var problems []string

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			d.Name = name
		} else {
			problems = append(problems, "name must not be empty")
		}
	}
	if req.Status != nil {
		s := domain.DriverStatus(*req.Status)
		if !s.Valid() {
			problems = append(problems, "status must be one of Active, Off Duty, On Break")
		} else {
			d.Status = s
		}
	}
	if req.CurrentShiftHours != nil {
		d.CurrentShiftHours = *req.CurrentShiftHours
	}
	if req.PastWeekHours != nil {
		d.PastWeekHours = domain.NormalizeWeekHours(*req.PastWeekHours)
	}
	if req.TotalDeliveriesToday != nil {
		d.TotalDeliveriesToday = *req.TotalDeliveriesToday
	}
	return problems
}
