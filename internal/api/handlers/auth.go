package handlers

import (
	"net/http"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/services"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Errors Errors
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	token, user, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Errors.Write(w, r, err, "Login failed")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)})
}

// Register creates a manager account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password, domain.RoleManager)
	if err != nil {
		h.Errors.Write(w, r, err, "Registration failed")
		return
	}

	token, err := h.Auth.Issue(user)
	if err != nil {
		h.Errors.Write(w, r, err, "Registration failed")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)})
}
