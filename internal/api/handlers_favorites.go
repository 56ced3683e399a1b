// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/radioglobe/radioglobe/internal/station"
)

// FavoritesList returns all starred stations, newest first.
func (h *Handler) FavoritesList(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	entries := h.favorites.List()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"favorites": entries,
		"count":     len(entries),
	}, started)
}

// FavoriteAddRequest is the body contract for POST /favorites.
type FavoriteAddRequest struct {
	Station station.Station `json:"station"`
}

// FavoritesAdd stars a station. Adding an already-starred station is
// idempotent and reported as such.
func (h *Handler) FavoritesAdd(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req FavoriteAddRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be JSON with a station field", err)
		return
	}
	if _, err := uuid.Parse(req.Station.UUID); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "station.stationuuid is not a valid UUID", nil)
		return
	}
	if req.Station.Name == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "station.name is required", nil)
		return
	}

	added := h.favorites.Add(req.Station)
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	respondSuccess(w, status, map[string]interface{}{
		"added": added,
		"count": h.favorites.Len(),
	}, started)
}

// FavoritesRemove unstars a station by UUID.
func (h *Handler) FavoritesRemove(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	stationUUID := chi.URLParam(r, "uuid")
	if _, err := uuid.Parse(stationUUID); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "uuid is not a valid station UUID", nil)
		return
	}

	if !h.favorites.Remove(stationUUID) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "station is not in favorites", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"removed": true,
		"count":   h.favorites.Len(),
	}, started)
}
