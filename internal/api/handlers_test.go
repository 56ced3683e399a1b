// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/radioglobe/radioglobe/internal/cache"
	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/directory"
	"github.com/radioglobe/radioglobe/internal/favorites"
	"github.com/radioglobe/radioglobe/internal/models"
	"github.com/radioglobe/radioglobe/internal/mood"
	"github.com/radioglobe/radioglobe/internal/station"
	"github.com/radioglobe/radioglobe/internal/view"
)

// envelope mirrors models.APIResponse with Data left raw so each test
// can decode it into the shape it expects.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error,omitempty"`
}

// stationDirectory serves a fixed station list for every bytag request
// and counts upstream hits.
func stationDirectory(t *testing.T, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// testRouter wires a full route tree against the given directory URL.
func testRouter(t *testing.T, directoryURL string) (http.Handler, *Handler) {
	t.Helper()

	cfg := &config.Config{
		Directory: config.DirectoryConfig{
			Servers:        []string{directoryURL},
			Mode:           config.ModeFallback,
			AttemptTimeout: 2 * time.Second,
		},
		Normalize: config.NormalizeConfig{
			MaxStations:    500,
			CoordTolerance: 0.001,
			SampleSize:     3,
		},
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}

	dirClient := directory.NewClient(cfg.Directory)
	viewCtrl := view.NewController(dirClient, station.Options{
		MaxStations:    cfg.Normalize.MaxStations,
		CoordTolerance: cfg.Normalize.CoordTolerance,
		SampleSize:     cfg.Normalize.SampleSize,
	})
	tagCache := cache.New(time.Minute)
	t.Cleanup(tagCache.Stop)

	handler := NewHandler(cfg, viewCtrl, dirClient, favorites.NewStore(), tagCache, nil)
	return NewRouter(handler, cfg.Security).Setup(), handler
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

const jazzStations = `[
	{"stationuuid": "3b6f1c1e-9e15-4d2b-9f59-0a8d3e4f5a61", "name": "Smooth FM", "latitude": 48.8566, "longitude": 2.3522, "url_resolved": "http://smooth.example/stream", "country": "France", "tags": "jazz,smooth", "bitrate": 128, "codec": "MP3"},
	{"stationuuid": "7c2d8a90-1b34-4c56-8d7e-9f0a1b2c3d4e", "name": "Blue Note Radio", "geo_lat": "40.7128", "geo_long": "-74.0060", "url_resolved": "http://bluenote.example/stream", "country": "USA", "tags": "jazz", "bitrate": 256, "codec": "AAC"},
	{"stationuuid": "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0", "name": "No Coordinates FM", "url_resolved": "http://nowhere.example/stream", "tags": "jazz"}
]`

func TestStationsReturnsNormalizedStations(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/stations?tag=jazz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Fatalf("envelope status = %q, want success", env.Status)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag header not set")
	}

	var result stationsResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if result.Tag != "jazz" {
		t.Errorf("tag = %q, want jazz", result.Tag)
	}
	// The third record has no usable coordinates and must be dropped.
	if result.Count != 2 {
		t.Errorf("count = %d, want 2", result.Count)
	}
	if result.Report.DroppedCoords != 1 {
		t.Errorf("report.dropped_coords = %d, want 1", result.Report.DroppedCoords)
	}
}

func TestStationsRejectsInvalidTag(t *testing.T) {
	srv, hits := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	for _, target := range []string{
		"/api/v1/stations",
		"/api/v1/stations?tag=jazz%2F..%2Fadmin",
	} {
		rec, env := doRequest(t, router, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
		if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: error = %+v, want VALIDATION_ERROR", target, env.Error)
		}
	}

	if hits.Load() != 0 {
		t.Errorf("upstream hits = %d, want 0 for rejected requests", hits.Load())
	}
}

func TestStationsDirectoryUnavailable(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	srv.Close() // every attempt now fails
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/stations?tag=jazz", nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "DIRECTORY_UNAVAILABLE" {
		t.Fatalf("error = %+v, want DIRECTORY_UNAVAILABLE", env.Error)
	}
}

func TestStationsCachesResults(t *testing.T) {
	srv, hits := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	for i := 0; i < 3; i++ {
		rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/stations?tag=jazz", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1 (later requests served from cache)", hits.Load())
	}
}

func TestViewRefreshSettlesOverPolling(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/view/refresh", []byte(`{"tag":"jazz"}`))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		Tag   string     `json:"tag"`
		Phase view.Phase `json:"phase"`
	}
	if err := json.Unmarshal(env.Data, &accepted); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if accepted.Phase != view.PhaseLoading {
		t.Fatalf("phase = %q, want %q", accepted.Phase, view.PhaseLoading)
	}

	// The fetch runs in the background; poll until it settles.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, env := doRequest(t, router, http.MethodGet, "/api/v1/view", nil)

		var snap view.Snapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			t.Fatalf("decoding snapshot: %v", err)
		}
		if snap.Phase == view.PhaseSuccess {
			if snap.Tag != "jazz" {
				t.Errorf("tag = %q, want jazz", snap.Tag)
			}
			if len(snap.Stations) != 2 {
				t.Errorf("stations = %d, want 2", len(snap.Stations))
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("view never settled, phase = %q", snap.Phase)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestViewRefreshRejectsBadBody(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	cases := []struct {
		name string
		body string
	}{
		{"not json", `tag=jazz`},
		{"missing tag", `{}`},
		{"unknown field", `{"tag":"jazz","shuffle":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/view/refresh", []byte(tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}
}

func TestRandomStationEmptyView(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/stations/random", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestClickRejectsInvalidUUID(t *testing.T) {
	srv, hits := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/stations/not-a-uuid/click", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if hits.Load() != 0 {
		t.Errorf("upstream hits = %d, want 0", hits.Load())
	}
}

func TestTagsReturnsMoodCatalog(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/tags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data struct {
		Tags  []mood.Tag `json:"tags"`
		Count int        `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data.Count != len(mood.Names()) {
		t.Errorf("count = %d, want %d", data.Count, len(mood.Names()))
	}
	if len(data.Tags) != data.Count {
		t.Errorf("tags length = %d, want %d", len(data.Tags), data.Count)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	const stationUUID = "3b6f1c1e-9e15-4d2b-9f59-0a8d3e4f5a61"
	body := []byte(`{"station": {"stationuuid": "` + stationUUID + `", "name": "Smooth FM", "latitude": 48.8566, "longitude": 2.3522}}`)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/favorites", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first add: status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	// Adding the same station again is idempotent.
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/favorites", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("second add: status = %d, want 200", rec.Code)
	}
	var addResult struct {
		Added bool `json:"added"`
		Count int  `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &addResult); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if addResult.Added || addResult.Count != 1 {
		t.Errorf("second add = %+v, want added=false count=1", addResult)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/favorites", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", rec.Code)
	}
	var list struct {
		Favorites []favorites.Entry `json:"favorites"`
		Count     int               `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if list.Count != 1 || len(list.Favorites) != 1 {
		t.Fatalf("list = %+v, want one favorite", list)
	}
	if list.Favorites[0].Station.UUID != stationUUID {
		t.Errorf("favorite uuid = %q, want %q", list.Favorites[0].Station.UUID, stationUUID)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/v1/favorites/"+stationUUID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: status = %d, want 200", rec.Code)
	}

	rec, env = doRequest(t, router, http.MethodDelete, "/api/v1/favorites/"+stationUUID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second remove: status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestFavoritesAddRejectsInvalidStation(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	cases := []struct {
		name string
		body string
	}{
		{"bad uuid", `{"station": {"stationuuid": "nope", "name": "X"}}`},
		{"missing name", `{"station": {"stationuuid": "3b6f1c1e-9e15-4d2b-9f59-0a8d3e4f5a61"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/favorites", []byte(tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status = %d, want 200", rec.Code)
	}
	var health struct {
		Status           string `json:"status"`
		DirectoryServers int    `json:"directory_servers"`
		DirectoryUsable  int    `json:"directory_usable"`
	}
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.DirectoryUsable != 1 {
		t.Errorf("directory_usable = %d, want 1", health.DirectoryUsable)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("live: status = %d, want 200", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready: status = %d, want 200", rec.Code)
	}
}

func TestStaticUIServesControls(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, id := range []string{
		`id="tag-input"`,    // tag selection (drives a directory refresh)
		`id="filter-input"`, // client-side filter over loaded stations
		`id="debug-panel"`,  // diagnostics panel fed by /api/v1/debug
		`id="audio"`,
	} {
		if !strings.Contains(body, id) {
			t.Errorf("index.html is missing %s", id)
		}
	}
}

func TestWebSocketUnavailableWithoutHub(t *testing.T) {
	srv, _ := stationDirectory(t, jazzStations)
	router, _ := testRouter(t, srv.URL)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/ws", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("error = %+v, want SERVICE_UNAVAILABLE", env.Error)
	}
}
