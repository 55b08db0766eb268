package handler

import (
	"net/http"

	"github.com/IANDYI/bloodpressure-service/internal/adapters/middleware"
)

// Authenticator wraps a handler so it only runs for an authenticated owner
type Authenticator interface {
	RequireAuth(next http.HandlerFunc) http.HandlerFunc
}

// NewRouter registers every route and wraps the mux with request metrics
func NewRouter(readings *ReadingHandler, medications *MedicationHandler, health *HealthHandler, auth Authenticator) http.Handler {
	mux := http.NewServeMux()

	// Operational endpoints, no auth required
	mux.HandleFunc("GET /metrics", Metrics)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /health/ready", health.Ready)
	mux.HandleFunc("GET /health/live", health.Live)

	// Literal segments take precedence over {reading_id}
	mux.HandleFunc("GET /readings/summary", auth.RequireAuth(readings.Summary))
	mux.HandleFunc("GET /readings/trend", auth.RequireAuth(readings.Trend))
	mux.HandleFunc("GET /readings/export", auth.RequireAuth(readings.Export))
	mux.HandleFunc("GET /readings/defaults", auth.RequireAuth(readings.Defaults))

	mux.HandleFunc("POST /readings", auth.RequireAuth(readings.CreateReading))
	mux.HandleFunc("GET /readings", auth.RequireAuth(readings.ListReadings))
	mux.HandleFunc("GET /readings/{reading_id}", auth.RequireAuth(readings.GetReading))
	mux.HandleFunc("PUT /readings/{reading_id}", auth.RequireAuth(readings.ReplaceReading))
	mux.HandleFunc("DELETE /readings/{reading_id}", auth.RequireAuth(readings.DeleteReading))

	mux.HandleFunc("POST /medications", auth.RequireAuth(medications.CreateMedication))
	mux.HandleFunc("GET /medications", auth.RequireAuth(medications.ListMedications))
	mux.HandleFunc("DELETE /medications/{medication_id}", auth.RequireAuth(medications.DeleteMedication))

	return middleware.MetricsMiddleware(mux)
}
