package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/models"
	"github.com/miumc/portal/internal/store"
)

type AccountHandler struct {
	service *app.Service
}

func NewAccountHandler(service *app.Service) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// HandleLogin compares the submitted credential against the stored
// value. The comparison is on opaque stored text, matching the data
// this portal migrated from.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.Store.GetAccountByStudentCode(req.StudentCode)
	if errors.Is(err, store.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to fetch account for %s: %v", req.StudentCode, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch account")
		return
	}

	if account.PasswordHash != req.Password {
		writeFailure(w, http.StatusUnauthorized, "Contraseña incorrecta")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    account,
	})
}

func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.service.Store.CreateUser(req.StudentCode, req.Email, req.Password)
	if errors.Is(err, store.ErrConflict) {
		writeFailure(w, http.StatusConflict, "El código de estudiante ya está registrado")
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to register %s: %v", req.StudentCode, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *AccountHandler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req models.OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	academic := h.service.Config.Academic
	if req.Phone == "" {
		req.Phone = academic.PlaceholderPhone
	}
	if req.CareerID == 0 {
		req.CareerID = academic.DefaultCareerID
	}
	if req.MencionID == 0 {
		req.MencionID = academic.DefaultSpecializationID
	}

	if err := h.service.Store.CompleteOnboarding(req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		logger.Error.Printf("Failed to complete onboarding for %s: %v", req.StudentCode, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to complete onboarding")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
