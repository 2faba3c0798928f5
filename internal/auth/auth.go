// SPDX-License-Identifier: MIT

// Package auth implements static token authentication for the HTTP API.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/metrics"
)

// HeaderToken is the fallback header for clients that cannot set an
// Authorization header.
const HeaderToken = "X-Biodivine-Token"

// ExtractToken pulls the API token from the request. Sources are
// checked in order: Authorization bearer header, X-Biodivine-Token
// header, "token" query parameter. Empty string means no token.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	if token := r.Header.Get(HeaderToken); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// Authorize compares the presented token against the expected one in
// constant time. An empty expected token authorizes everything.
func Authorize(expected, presented string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}

// Middleware rejects requests that do not carry the expected token.
// With an empty token the middleware is a pass-through.
func Middleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorize(expected, ExtractToken(r)) {
				metrics.AuthFailures.Inc()
				logger := log.WithComponent("auth")
				logger.Warn().
					Str("remote", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("rejected request with invalid token")
				w.Header().Set("WWW-Authenticate", `Bearer realm="biodivine"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
