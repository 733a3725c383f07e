package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/platform/validate"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Warn("encode response failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Message: msg})
}

// Errors renders service errors as HTTP responses. Expose controls whether
// 500 responses carry the underlying error text.
type Errors struct {
	Expose bool
}

// Write maps err to a status code. msg is the client-facing summary used
// for not-found and internal failures.
func (e Errors) Write(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: verr.Message, Errors: verr.Problems})
	case errors.Is(err, services.ErrNotEnoughDrivers),
		errors.Is(err, services.ErrNoPendingOrders),
		errors.Is(err, services.ErrNoRoutes):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, msg)
	case errors.Is(err, ports.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrEstimatorUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		logrus.WithFields(logrus.Fields{
			"req_id": obs.RequestID(r.Context()),
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error(msg)

		detail := "Internal server error"
		if e.Expose {
			detail = err.Error()
		}
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Message: msg, Error: detail})
	}
}

// decodeJSON reads exactly one JSON object into dst. It writes the 400
// response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: "invalid json body", Errors: []string{err.Error()}})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// decodeValid is decodeJSON followed by struct-tag validation.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if problems := validate.Struct(dst); len(problems) > 0 {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: "validation failed", Errors: problems})
		return false
	}
	return true
}
