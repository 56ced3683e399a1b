// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/radioglobe/radioglobe/internal/cache"
	"github.com/radioglobe/radioglobe/internal/directory"
	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/mood"
	"github.com/radioglobe/radioglobe/internal/station"
)

// stationsCacheTTL is how long per-tag results are memoized. Station
// lists change slowly; browsing back to a recent tag should be instant.
const stationsCacheTTL = 5 * time.Minute

// StationsRequest is the query contract for GET /stations.
type StationsRequest struct {
	Tag string `validate:"required,stationtag"`
}

// stationsResult is the cached and served payload for one tag.
type stationsResult struct {
	Tag      string            `json:"tag"`
	Count    int               `json:"count"`
	Stations []station.Station `json:"stations"`
	Report   station.Report    `json:"report"`
}

// Stations returns normalized stations for a tag without touching the
// shared view, so API consumers can explore tags while browsers keep
// watching the current one.
func (h *Handler) Stations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	req := StationsRequest{Tag: r.URL.Query().Get("tag")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	key := cache.GenerateKey("stations", req)
	if h.cache != nil {
		if cached, ok := h.cache.Get(key); ok {
			if result, ok := cached.(stationsResult); ok {
				respondSuccess(w, http.StatusOK, result, started)
				return
			}
		}
	}

	records, err := h.directory.FetchByTag(r.Context(), req.Tag)
	if err != nil {
		status, code := directoryErrorStatus(err)
		respondError(w, status, code, "station directory is unavailable", err)
		return
	}

	stations, report := station.Normalize(records, h.normalizeOptions())
	result := stationsResult{
		Tag:      req.Tag,
		Count:    len(stations),
		Stations: stations,
		Report:   report,
	}

	if h.cache != nil {
		h.cache.SetWithTTL(key, result, stationsCacheTTL)
	}

	respondSuccess(w, http.StatusOK, result, started)
}

// RandomStation picks one station at random from the current view.
func (h *Handler) RandomStation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	snap := h.view.Snapshot()
	if len(snap.Stations) == 0 {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no stations loaded on the globe", nil)
		return
	}

	pick := snap.Stations[rand.Intn(len(snap.Stations))] //nolint:gosec // shuffle, not crypto
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"tag":     snap.Tag,
		"station": pick,
	}, started)
}

// Click reports a station play to the directory so click-based rankings
// stay meaningful. Reporting is best-effort: the play already happened.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	stationUUID := chi.URLParam(r, "uuid")
	if _, err := uuid.Parse(stationUUID); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "uuid is not a valid station UUID", nil)
		return
	}

	resp := h.directory.ReportClick(r.Context(), stationUUID)
	if resp == nil {
		logger := logging.Ctx(r.Context())
		logger.Debug().Str("station_uuid", stationUUID).Msg("click not reported")
		respondSuccess(w, http.StatusAccepted, map[string]interface{}{
			"reported": false,
		}, started)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"reported": true,
		"click":    resp,
	}, started)
}

// Tags returns the curated mood catalog.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"tags":  mood.All(),
		"count": len(mood.Names()),
	}, started)
}

// normalizeOptions maps config to normalizer options.
func (h *Handler) normalizeOptions() station.Options {
	if h.config == nil {
		return station.DefaultOptions()
	}
	return station.Options{
		MaxStations:    h.config.Normalize.MaxStations,
		CoordTolerance: h.config.Normalize.CoordTolerance,
		SampleSize:     h.config.Normalize.SampleSize,
	}
}

// directoryErrorStatus maps a fetch error to an HTTP status and code.
func directoryErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, directory.ErrNoServers):
		return http.StatusServiceUnavailable, "DIRECTORY_UNAVAILABLE"
	case errors.Is(err, directory.ErrAllServersFailed):
		return http.StatusBadGateway, "DIRECTORY_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
