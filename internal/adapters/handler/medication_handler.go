package handler

import (
	"encoding/json"
	"net/http"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicationHandler handles HTTP requests for medication operations
type MedicationHandler struct {
	medicationService ports.MedicationService
	logger            *zap.Logger
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(medicationService ports.MedicationService, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{
		medicationService: medicationService,
		logger:            logger,
	}
}

// MedicationRequest is the body of POST /medications
type MedicationRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
}

// CreateMedication handles POST /medications
func (h *MedicationHandler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scope.logger.Info("failed to decode request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		scope.logRequest(r, http.StatusBadRequest)
		return
	}

	medication, err := h.medicationService.AddMedication(r.Context(), scope.ownerID, req.Name, req.StartDate)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, medication)
	scope.logRequest(r, http.StatusCreated)
}

// ListMedications handles GET /medications
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	medications, err := h.medicationService.ListMedications(r.Context(), scope.ownerID)
	if err != nil {
		scope.fail(w, r, err)
		return
	}
	if medications == nil {
		medications = []domain.Medication{}
	}

	writeJSON(w, http.StatusOK, medications)
	scope.logRequest(r, http.StatusOK)
}

// DeleteMedication handles DELETE /medications/{medication_id}
func (h *MedicationHandler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	medicationID, err := uuid.Parse(r.PathValue("medication_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid medication ID")
		scope.logRequest(r, http.StatusBadRequest)
		return
	}

	if err := h.medicationService.DeleteMedication(r.Context(), scope.ownerID, medicationID); err != nil {
		scope.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	scope.logRequest(r, http.StatusNoContent)
}
