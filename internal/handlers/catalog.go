package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/models"
)

type CatalogHandler struct {
	service *app.Service
}

func NewCatalogHandler(service *app.Service) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

func (h *CatalogHandler) HandleCareers(w http.ResponseWriter, r *http.Request) {
	careers, err := h.service.Store.ListCareers()
	if err != nil {
		logger.Error.Printf("Failed to list careers: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch careers")
		return
	}

	writeJSON(w, http.StatusOK, careers)
}

func (h *CatalogHandler) HandleSpecializations(w http.ResponseWriter, r *http.Request) {
	careerID, err := strconv.ParseInt(r.PathValue("careerId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid career id")
		return
	}

	specs, err := h.service.Store.ListSpecializations(careerID)
	if err != nil {
		logger.Error.Printf("Failed to list specializations for career %d: %v", careerID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch specializations")
		return
	}
	if specs == nil {
		specs = []models.Specialization{}
	}

	writeJSON(w, http.StatusOK, specs)
}

func (h *CatalogHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	specializationID, err := strconv.ParseInt(r.PathValue("specializationId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid specialization id")
		return
	}

	subjects, err := h.service.Store.ListSubjects(specializationID)
	if err != nil {
		logger.Error.Printf("Failed to list subjects for specialization %d: %v", specializationID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch subjects")
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}

	writeJSON(w, http.StatusOK, subjects)
}

func (h *CatalogHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	studentCode := r.PathValue("studentCode")
	if studentCode == "" {
		writeError(w, http.StatusBadRequest, "Invalid student code")
		return
	}

	codes, err := h.service.Store.ListApprovedSubjectCodes(studentCode)
	if err != nil {
		logger.Error.Printf("Failed to list approved subjects for %s: %v", studentCode, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch progress")
		return
	}
	if codes == nil {
		codes = []string{}
	}

	writeJSON(w, http.StatusOK, codes)
}
