package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/metrics"
	"github.com/miumc/portal/internal/models"
	"github.com/miumc/portal/internal/store"
)

type EnrollmentHandler struct {
	service *app.Service
}

func NewEnrollmentHandler(service *app.Service) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
	}
}

// HandleList returns the student's enrollment for the current period.
// Subject columns and schedule fields are merged into one flat object
// per row, schedule fields winning on key collision.
func (h *EnrollmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	studentCode := r.PathValue("studentCode")
	if studentCode == "" {
		writeError(w, http.StatusBadRequest, "Invalid student code")
		return
	}

	rows, err := h.service.Store.ListEnrollments(studentCode, h.service.Config.Academic.CurrentPeriod)
	if err != nil {
		logger.Error.Printf("Failed to list enrollments for %s: %v", studentCode, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch enrollments")
		return
	}

	enrollments := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		flat, err := flattenEnrollment(row)
		if err != nil {
			logger.Error.Printf("Failed to flatten enrollment row: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to encode enrollments")
			return
		}
		enrollments = append(enrollments, flat)
	}

	writeJSON(w, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req models.SaveEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	period := req.Period
	if period == "" {
		period = h.service.Config.Academic.CurrentPeriod
	}

	err := h.service.Store.ReplaceEnrollments(req.StudentCode, period, req.EnrolledSubjects)
	if errors.Is(err, store.ErrNotFound) {
		metrics.EnrollmentSavesTotal.WithLabelValues("not_found").Inc()
		writeFailure(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to save enrollment for %s: %v", req.StudentCode, err)
		metrics.EnrollmentSavesTotal.WithLabelValues("error").Inc()
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.EnrollmentSavesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Inscripción guardada correctamente",
	})
}

// flattenEnrollment merges the subject columns and the schedule blob
// into one object via JSON round-trips. The schedule is applied last.
func flattenEnrollment(row store.EnrollmentRow) (map[string]interface{}, error) {
	flat := map[string]interface{}{}

	subject, err := json.Marshal(row.Subject)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subject, &flat); err != nil {
		return nil, err
	}

	schedule, err := json.Marshal(row.ScheduleData)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schedule, &flat); err != nil {
		return nil, err
	}

	return flat, nil
}
