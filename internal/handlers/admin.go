package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/metrics"
	"github.com/miumc/portal/internal/models"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Store.ListUsers()
	if err != nil {
		logger.Error.Printf("Failed to list users: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	if users == nil {
		users = []models.Account{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var upd models.AdminUserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	academic := h.service.Config.Academic
	if upd.CareerID == 0 {
		upd.CareerID = academic.DefaultCareerID
	}
	if upd.SpecializationID == 0 {
		upd.SpecializationID = academic.DefaultSpecializationID
	}

	if err := h.service.Store.UpdateUser(id, upd); err != nil {
		logger.Error.Printf("Failed to update user %d: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Usuario actualizado correctamente",
	})
}

func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.service.Store.DeleteUser(id); err != nil {
		logger.Error.Printf("Failed to delete user %d: %v", id, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Usuario eliminado correctamente",
	})
}

type bulkRecordsRequest struct {
	UserID               int64    `json:"userId"`
	ApprovedSubjectCodes []string `json:"approvedSubjectCodes"`
}

func (h *AdminHandler) HandleBulkRecords(w http.ResponseWriter, r *http.Request) {
	var req bulkRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.service.Store.ReplaceAcademicRecords(req.UserID, req.ApprovedSubjectCodes); err != nil {
		logger.Error.Printf("Failed to replace academic records for user %d: %v", req.UserID, err)
		metrics.RecordReplacesTotal.WithLabelValues("error").Inc()
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordReplacesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Récord actualizado con éxito",
	})
}
