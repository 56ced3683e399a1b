// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/middleware"
)

// Router assembles the chi route tree around a handler.
type Router struct {
	handler *Handler
	chimw   *chiMiddlewares
}

// NewRouter creates a router for the handler.
func NewRouter(handler *Handler, security config.SecurityConfig) *Router {
	return &Router{
		handler: handler,
		chimw:   newChiMiddlewares(security),
	}
}

// Setup builds the complete route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route. CORS is global so
	// OPTIONS preflights resolve before routing.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS())

	// Health probes get a permissive limit so monitoring can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chimw.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/stations", router.handler.Stations)
		r.Get("/stations/random", router.handler.RandomStation)
		r.Post("/stations/{uuid}/click", router.handler.Click)

		r.Get("/view", router.handler.ViewGet)
		r.Post("/view/refresh", router.handler.ViewRefresh)

		r.Get("/tags", router.handler.Tags)
		r.Get("/debug", router.handler.Debug)

		r.Get("/favorites", router.handler.FavoritesList)
		r.Post("/favorites", router.handler.FavoritesAdd)
		r.Delete("/favorites/{uuid}", router.handler.FavoritesRemove)

		r.Get("/ws", router.handler.WebSocket)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Embedded globe UI at the root.
	r.Handle("/*", staticHandler())

	return r
}
