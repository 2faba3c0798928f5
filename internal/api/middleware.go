// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// requestID assigns every request a unique id, reusing a caller
// supplied one when present. The id travels via context into logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(log.ContextWithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs every request and feeds the HTTP metrics. It runs
// inside the router so the matched chi route pattern is available.
func instrument(next http.Handler) http.Handler {
	logger := log.WithComponent("api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		statusClass := strconv.Itoa(rec.status/100) + "xx"
		metrics.HTTPRequests.WithLabelValues(route, statusClass).Inc()

		logger.Info().
			Str(log.FieldRequestID, log.RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("request")
	})
}
