// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/models"
)

// healthRateLimit is the permissive per-minute limit for health probes,
// which monitoring systems hit far more often than browsers hit the API.
const healthRateLimit = 1000

// chiMiddlewares builds the CORS and rate-limit middleware from config.
type chiMiddlewares struct {
	security config.SecurityConfig
	cors     func(http.Handler) http.Handler
}

// newChiMiddlewares wires go-chi/cors from the security configuration.
func newChiMiddlewares(security config.SecurityConfig) *chiMiddlewares {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "ETag"},
		MaxAge:         86400,
	})

	return &chiMiddlewares{
		security: security,
		cors:     corsHandler,
	}
}

// CORS returns the go-chi/cors middleware.
func (m *chiMiddlewares) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns per-IP rate limiting with go-chi/httprate, using the
// configured request rate.
func (m *chiMiddlewares) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.security.RateLimitReqs, m.security.RateLimitWindow)
}

// RateLimitHealth returns the permissive limiter used on health routes.
func (m *chiMiddlewares) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit(healthRateLimit, time.Minute)
}

func (m *chiMiddlewares) limit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.security.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusTooManyRequests, &models.APIResponse{
				Status: "error",
				Metadata: models.Metadata{
					Timestamp: time.Now().UTC(),
				},
				Error: &models.APIError{
					Code:    "RATE_LIMIT_EXCEEDED",
					Message: "too many requests, slow down",
				},
			})
		}),
	)
}
