// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package api provides the HTTP surface of RadioGlobe: station and view
// endpoints, favorites, health probes, Prometheus metrics, the websocket
// upgrade, and the embedded globe UI. Routing uses chi.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/radioglobe/radioglobe/internal/cache"
	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/directory"
	"github.com/radioglobe/radioglobe/internal/favorites"
	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/view"
	ws "github.com/radioglobe/radioglobe/internal/websocket"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	config    *config.Config
	view      *view.Controller
	directory *directory.Client
	favorites *favorites.Store
	cache     *cache.Cache
	wsHub     *ws.Hub
	startTime time.Time
}

// NewHandler wires a handler from its dependencies. cache and wsHub may
// be nil; the corresponding features degrade gracefully.
func NewHandler(cfg *config.Config, viewCtrl *view.Controller, dir *directory.Client, favs *favorites.Store, c *cache.Cache, hub *ws.Hub) *Handler {
	return &Handler{
		config:    cfg,
		view:      viewCtrl,
		directory: dir,
		favorites: favs,
		cache:     c,
		wsHub:     hub,
		startTime: time.Now(),
	}
}

// getUpgrader builds the websocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the websocket Origin header against the
// configured CORS origins. Browsers always send Origin; an absent header
// means a non-browser client bypassing CORS, which is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("websocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("websocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
