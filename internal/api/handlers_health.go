// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"net/http"
	"time"

	"github.com/radioglobe/radioglobe/internal/models"
	"github.com/radioglobe/radioglobe/internal/view"
)

// Health reports overall service health: whether any directory candidate
// is usable and the state of the current view.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	candidates := h.directory.Health()

	usable := 0
	for _, c := range candidates {
		if c.BreakerState != "open" {
			usable++
		}
	}

	snap := h.view.Snapshot()

	status := "healthy"
	if usable == 0 {
		status = "degraded"
	} else if snap.Phase == view.PhaseError {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":            status,
			"version":           "1.0.0",
			"directory_servers": len(candidates),
			"directory_usable":  usable,
			"view_phase":        snap.Phase,
			"view_tag":          snap.Tag,
			"stations_loaded":   len(snap.Stations),
			"uptime":            time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthLive is the liveness probe: 200 whenever the process is up,
// regardless of upstream state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady is the readiness probe: 200 only when at least one
// directory candidate is not standing behind an open breaker.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	candidates := h.directory.Health()

	usable := 0
	for _, c := range candidates {
		if c.BreakerState != "open" {
			usable++
		}
	}
	ready := usable > 0

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"directory_servers": len(candidates),
			"directory_usable":  usable,
			"ready_to_serve":    ready,
			"uptime":            time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
