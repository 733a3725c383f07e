package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderHandler struct {
	Repo    ports.OrderRepository
	Routes  ports.RouteRepository
	Drivers ports.DriverRepository
	Errors  Errors
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.ListOrders(r.Context())
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to fetch orders")
		return
	}

	res := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, dto.NewOrderResponse(o))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Repo.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Order not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOrderResponse(o))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderRequest
	if !decodeValid(w, r, &req) {
		return
	}

	var missing []string
	for _, f := range []struct {
		name    string
		present bool
	}{
		{"orderId", req.OrderID != nil},
		{"customerName", req.CustomerName != nil},
		{"valueRs", req.ValueRs != nil},
		{"pickupLocation", req.PickupLocation != nil},
		{"deliveryLocation", req.DeliveryLocation != nil},
		{"assignedRoute", req.AssignedRoute != nil},
	} {
		if !f.present {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid order", Problems: missing}, "")
		return
	}

	o := domain.Order{
		ID:       uuid.New().String(),
		Status:   domain.OrderPending,
		Priority: domain.PriorityMedium,
	}
	problems, err := h.apply(r.Context(), &o, req)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to create order")
		return
	}
	if len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid order", Problems: problems}, "")
		return
	}

	created, err := h.Repo.CreateOrder(r.Context(), o)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to create order")
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewOrderResponse(created))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderRequest
	if !decodeValid(w, r, &req) {
		return
	}

	o, err := h.Repo.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.Write(w, r, err, "Order not found")
		return
	}

	problems, err := h.apply(r.Context(), &o, req)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to update order")
		return
	}
	if len(problems) > 0 {
		h.Errors.Write(w, r, &services.ValidationError{Message: "Invalid order", Problems: problems}, "")
		return
	}

	updated, err := h.Repo.UpdateOrder(r.Context(), o)
	if err != nil {
		h.Errors.Write(w, r, err, "Failed to update order")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOrderResponse(updated))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Errors.Write(w, r, err, "Order not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Order deleted"})
}

// apply copies non-nil request fields onto o, resolving route and driver
// references. Unknown references are reported as problems, not errors.
func (h *OrderHandler) apply(ctx context.Context, o *domain.Order, req dto.OrderRequest) ([]string, error) {
	var problems []string

	setText := func(dst *string, v *string, field string) {
		if v == nil {
			return
		}
		if t := strings.TrimSpace(*v); t != "" {
			*dst = t
		} else {
			problems = append(problems, field+" must not be empty")
		}
	}
	setText(&o.OrderID, req.OrderID, "orderId")
	setText(&o.CustomerName, req.CustomerName, "customerName")
	setText(&o.PickupLocation, req.PickupLocation, "pickupLocation")
	setText(&o.DeliveryLocation, req.DeliveryLocation, "deliveryLocation")

	if req.ValueRs != nil {
		o.ValueRs = *req.ValueRs
	}
	if req.Status != nil {
		s := domain.OrderStatus(*req.Status)
		if !s.Valid() {
			problems = append(problems, "status must be one of Pending, In Transit, Delivered, Cancelled")
		} else {
			o.Status = s
		}
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		if !p.Valid() {
			problems = append(problems, "priorityLevel must be one of High, Medium, Low")
		} else {
			o.Priority = p
		}
	}
	if req.EstimatedDeliveryTimeMinutes != nil {
		o.EstimatedDeliveryTimeMinutes = req.EstimatedDeliveryTimeMinutes
	}
	if req.ActualDeliveryTimeMinutes != nil {
		o.ActualDeliveryTimeMinutes = req.ActualDeliveryTimeMinutes
	}
	if req.OrderDate != nil {
		o.OrderDate = *req.OrderDate
	}
	if req.DeliveryTimestamp != nil {
		o.DeliveryTimestamp = req.DeliveryTimestamp
	}

	if req.AssignedRoute != nil {
		route, err := h.Routes.GetRoute(ctx, *req.AssignedRoute)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			problems = append(problems, fmt.Sprintf("assignedRoute %q does not exist", *req.AssignedRoute))
		case err != nil:
			return nil, err
		default:
			o.RouteID = route.ID
			if o.EstimatedDeliveryTimeMinutes == nil {
				base := route.BaseTimeMinutes
				o.EstimatedDeliveryTimeMinutes = &base
			}
		}
	}

	if req.AssignedDriver != nil {
		if *req.AssignedDriver == "" {
			o.AssignedDriverID = nil
		} else {
			driver, err := h.Drivers.GetDriver(ctx, *req.AssignedDriver)
			switch {
			case errors.Is(err, ports.ErrNotFound):
				problems = append(problems, fmt.Sprintf("assignedDriver %q does not exist", *req.AssignedDriver))
			case err != nil:
				return nil, err
			default:
				id := driver.ID
				o.AssignedDriverID = &id
			}
		}
	}

	return problems, nil
}
