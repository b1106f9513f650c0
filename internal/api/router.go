package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/asherrising888-debug/NasdaqETF/internal/api/handlers"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// NewRouter wires the dashboard, the JSON API and the push channel.
// jobsHandler may be nil when the scheduler is disabled.
func NewRouter(
	reportHandler *handlers.ReportHandler,
	dashboard *handlers.DashboardHandler,
	hub *handlers.Hub,
	jobsHandler *handlers.JobsHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Dashboard and push channel
	r.HandleFunc("/", dashboard.Home).Methods("GET")
	r.HandleFunc("/ws", hub.Handle).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/report", reportHandler.Get).Methods("GET")
	api.HandleFunc("/report/refresh", reportHandler.Refresh).Methods("POST")
	api.HandleFunc("/summary", reportHandler.Summary).Methods("GET")

	if jobsHandler != nil {
		api.HandleFunc("/jobs", jobsHandler.GetStats).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", jobsHandler.Run).Methods("POST")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "nasdaq-etf-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from handler panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
