// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"net/http"
	"time"
)

// Debug exposes the normalizer report for the current view, the
// directory candidate list with breaker states, and cache statistics.
// It backs the UI's hidden diagnostics panel.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	snap := h.view.Snapshot()

	data := map[string]interface{}{
		"view": map[string]interface{}{
			"request_id": snap.RequestID,
			"phase":      snap.Phase,
			"tag":        snap.Tag,
			"stations":   len(snap.Stations),
			"error":      snap.Error,
			"updated_at": snap.UpdatedAt,
		},
		"normalizer": snap.Report,
		"directory":  h.directory.Health(),
		"websocket_clients": func() int {
			if h.wsHub == nil {
				return 0
			}
			return h.wsHub.GetClientCount()
		}(),
	}

	if h.cache != nil {
		stats := h.cache.GetStats()
		data["cache"] = map[string]interface{}{
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"evictions": stats.Evictions,
			"keys":      stats.TotalKeys,
			"hit_rate":  h.cache.HitRate(),
		}
	}

	respondSuccess(w, http.StatusOK, data, started)
}
