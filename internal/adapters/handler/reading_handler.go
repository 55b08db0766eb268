package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingHandler handles HTTP requests for reading operations
// Every route acts on the readings of the authenticated owner only
type ReadingHandler struct {
	readingService ports.ReadingService
	location       *time.Location
	logger         *zap.Logger
	now            func() time.Time
}

// NewReadingHandler creates a new reading handler.
// loc is the zone calendar windows and exports are expressed in.
func NewReadingHandler(readingService ports.ReadingService, loc *time.Location, logger *zap.Logger) *ReadingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReadingHandler{
		readingService: readingService,
		location:       loc,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock replaces the time source used to resolve windows
func (h *ReadingHandler) WithClock(now func() time.Time) *ReadingHandler {
	h.now = now
	return h
}

// ReadingRequest is the body of POST /readings and PUT /readings/{reading_id}
type ReadingRequest struct {
	Systolic   int       `json:"systolic"`
	Diastolic  int       `json:"diastolic"`
	Pulse      int       `json:"pulse"`
	MeasuredAt time.Time `json:"measured_at"`
}

// ReadingResponse is a reading with its category
type ReadingResponse struct {
	domain.Reading
	Category domain.SeverityCategory `json:"category"`
	Label    string                  `json:"label"`
}

// ReadingListResponse is the body of GET /readings
type ReadingListResponse struct {
	Window   string            `json:"window"`
	Count    int               `json:"count"`
	Readings []ReadingResponse `json:"readings"`
}

// SummaryResponse adds the display label and the empty flag to a summary
type SummaryResponse struct {
	domain.Summary
	Label string `json:"label"`
	Empty bool   `json:"empty"`
}

// TrendPoint is one chart point
type TrendPoint struct {
	MeasuredAt time.Time `json:"measured_at"`
	Systolic   int       `json:"systolic"`
	Diastolic  int       `json:"diastolic"`
	Pulse      int       `json:"pulse"`
}

// TrendResponse is the body of GET /readings/trend, oldest point first
type TrendResponse struct {
	Window string       `json:"window"`
	Points []TrendPoint `json:"points"`
}

func newReadingResponse(r domain.Reading) ReadingResponse {
	category := r.Category()
	return ReadingResponse{Reading: r, Category: category, Label: category.Label()}
}

func newSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{Summary: s, Label: s.Category.Label(), Empty: s.Empty()}
}

// CreateReading handles POST /readings
func (h *ReadingHandler) CreateReading(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scope.logger.Info("failed to decode request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		scope.logRequest(r, http.StatusBadRequest)
		return
	}

	reading, err := h.readingService.RecordReading(r.Context(), scope.ownerID, toInput(req))
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReadingResponse(*reading))
	scope.logRequest(r, http.StatusCreated)
}

// ListReadings handles GET /readings, newest first
func (h *ReadingHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	window, err := ParseWindow(r.URL.Query(), h.now(), h.location, domain.LastNDays{N: 7})
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	readings, err := h.readingService.ListReadings(r.Context(), scope.ownerID, window)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	response := ReadingListResponse{
		Window:   window.String(),
		Count:    len(readings),
		Readings: make([]ReadingResponse, 0, len(readings)),
	}
	for _, reading := range readings {
		response.Readings = append(response.Readings, newReadingResponse(reading))
	}

	writeJSON(w, http.StatusOK, response)
	scope.logRequest(r, http.StatusOK)
}

// GetReading handles GET /readings/{reading_id}
func (h *ReadingHandler) GetReading(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	readingID, ok := parseReadingID(w, r, scope)
	if !ok {
		return
	}

	reading, err := h.readingService.GetReading(r.Context(), scope.ownerID, readingID)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReadingResponse(*reading))
	scope.logRequest(r, http.StatusOK)
}

// ReplaceReading handles PUT /readings/{reading_id}
// All fields are replaced, measured_at included
func (h *ReadingHandler) ReplaceReading(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	readingID, ok := parseReadingID(w, r, scope)
	if !ok {
		return
	}

	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scope.logger.Info("failed to decode request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		scope.logRequest(r, http.StatusBadRequest)
		return
	}

	reading, err := h.readingService.ReplaceReading(r.Context(), scope.ownerID, readingID, toInput(req))
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReadingResponse(*reading))
	scope.logRequest(r, http.StatusOK)
}

// DeleteReading handles DELETE /readings/{reading_id}
func (h *ReadingHandler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	readingID, ok := parseReadingID(w, r, scope)
	if !ok {
		return
	}

	if err := h.readingService.DeleteReading(r.Context(), scope.ownerID, readingID); err != nil {
		scope.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	scope.logRequest(r, http.StatusNoContent)
}

// Summary handles GET /readings/summary
func (h *ReadingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	window, err := ParseWindow(r.URL.Query(), h.now(), h.location, domain.LastNDays{N: 7})
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	summary, err := h.readingService.Summarize(r.Context(), scope.ownerID, window)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newSummaryResponse(*summary))
	scope.logRequest(r, http.StatusOK)
}

// Trend handles GET /readings/trend, oldest first for charting
func (h *ReadingHandler) Trend(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	window, err := ParseWindow(r.URL.Query(), h.now(), h.location, domain.LastNDays{N: 7})
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	readings, err := h.readingService.Trend(r.Context(), scope.ownerID, window)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	response := TrendResponse{Window: window.String(), Points: make([]TrendPoint, 0, len(readings))}
	for _, reading := range readings {
		response.Points = append(response.Points, TrendPoint{
			MeasuredAt: reading.MeasuredAt,
			Systolic:   reading.Systolic,
			Diastolic:  reading.Diastolic,
			Pulse:      reading.Pulse,
		})
	}

	writeJSON(w, http.StatusOK, response)
	scope.logRequest(r, http.StatusOK)
}

// Export handles GET /readings/export and returns an XLSX workbook
// Without a range parameter every reading is exported
func (h *ReadingHandler) Export(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	now := h.now()
	window, err := ParseWindow(r.URL.Query(), now, h.location, domain.AllTime{})
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	readings, summary, err := h.readingService.Report(r.Context(), scope.ownerID, window)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	data, err := GenerateReadingsExport(readings, *summary, h.location)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("blood-pressure-%s.xlsx", now.In(h.location).Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		scope.logger.Warn("failed to write export", zap.Error(err))
	}
	scope.logRequest(r, http.StatusOK)
}

// Defaults handles GET /readings/defaults, the starting values of a new reading
func (h *ReadingHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	scope, ok := beginRequest(w, r, h.logger)
	if !ok {
		return
	}

	defaults, err := h.readingService.Defaults(r.Context(), scope.ownerID)
	if err != nil {
		scope.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, defaults)
	scope.logRequest(r, http.StatusOK)
}

func parseReadingID(w http.ResponseWriter, r *http.Request, scope *requestScope) (uuid.UUID, bool) {
	readingID, err := uuid.Parse(r.PathValue("reading_id"))
	if err != nil {
		scope.logger.Info("invalid reading id", zap.String("reading_id", r.PathValue("reading_id")))
		writeError(w, http.StatusBadRequest, "invalid reading ID")
		scope.logRequest(r, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return readingID, true
}

func toInput(req ReadingRequest) ports.ReadingInput {
	return ports.ReadingInput{
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
		Pulse:      req.Pulse,
		MeasuredAt: req.MeasuredAt,
	}
}
