package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/adapters/middleware"
	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// generateRequestID generates a unique request ID for tracing
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}

// requestScope carries per-request logging metadata
type requestScope struct {
	requestID string
	ownerID   string
	start     time.Time
	logger    *zap.Logger
}

// beginRequest resolves the authenticated owner, writing 401 when there is none
func beginRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*requestScope, bool) {
	scope := &requestScope{
		requestID: generateRequestID(),
		start:     time.Now(),
	}
	scope.logger = logger.With(zap.String("request_id", scope.requestID))

	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		scope.logger.Warn("missing owner id in request context")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	scope.ownerID = ownerID
	scope.logger = scope.logger.With(zap.String("owner_id", ownerID))
	return scope, true
}

// logRequest logs structured request metadata
func (s *requestScope) logRequest(r *http.Request, statusCode int) {
	s.logger.Info("request completed",
		zap.String("method", r.Method),
		zap.String("endpoint", r.URL.Path),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", time.Since(s.start).Milliseconds()))
}

// fail maps a service error to a status code, logs it and writes the response
func (s *requestScope) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		message = "internal server error"
	}
	writeError(w, status, message)
	s.logRequest(r, status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidReading), errors.Is(err, domain.ErrInvalidMedication), errors.Is(err, ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReadingNotFound), errors.Is(err, domain.ErrMedicationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingOwner):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure can only be a broken connection
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
