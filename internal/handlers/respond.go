package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/metrics"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

// writeError is the read-path failure shape: {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}

// writeFailure is the write-path failure shape: {"success": false, "message": msg}.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": msg,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with request counting and latency
// observation under a fixed route label.
func Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		metrics.RequestDuration.WithLabelValues(route, r.Method, status).
			Observe(time.Since(start).Seconds())
	}
}
