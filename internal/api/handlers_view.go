// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/view"
)

// refreshTimeout bounds a background view refresh: enough for a full
// fallback walk across every mirror, not enough to leak goroutines.
const refreshTimeout = time.Minute

// ViewGet returns the current view snapshot: phase, tag, stations and
// the normalizer report. Browsers poll this on load and then follow
// websocket pushes.
func (h *Handler) ViewGet(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, h.view.Snapshot(), started)
}

// ViewRefreshRequest is the body contract for POST /view/refresh.
type ViewRefreshRequest struct {
	Tag string `json:"tag" validate:"required,stationtag"`
}

// ViewRefresh switches the globe to a new tag. The refresh runs in the
// background; the response is the committed loading snapshot, and the
// settled result arrives over the websocket (or the next ViewGet poll).
// A newer refresh always wins over an older in-flight one.
func (h *Handler) ViewRefresh(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req ViewRefreshRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be JSON with a tag field", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	// Detach from the request context but keep the request id for log
	// correlation across the background fetch, and hand the goroutine a
	// component-scoped logger.
	refreshCtx := logging.ContextWithRequestID(context.Background(), logging.RequestIDFromContext(r.Context()))
	refreshCtx = logging.ContextWithLogger(refreshCtx, logging.With().Str("component", "view-refresh").Logger())

	go func() {
		ctx, cancel := context.WithTimeout(refreshCtx, refreshTimeout)
		defer cancel()

		if _, err := h.view.Refresh(ctx, req.Tag); err != nil && !errors.Is(err, view.ErrSuperseded) {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Str("tag", sanitizeLogValue(req.Tag)).Msg("background view refresh failed")
		}
	}()

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"tag":   req.Tag,
		"phase": view.PhaseLoading,
	}, started)
}
