// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radioglobe/radioglobe/internal/config"
)

func testConfig(servers ...string) config.DirectoryConfig {
	return config.DirectoryConfig{
		Servers:        servers,
		Mode:           config.ModeFallback,
		AttemptTimeout: 2 * time.Second,
	}
}

// failingServer returns the given status for every request.
func failingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stationServer serves a fixed JSON body and counts requests.
func stationServer(t *testing.T, body string, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchByTagFallsBackToHealthyServer(t *testing.T) {
	bad1 := failingServer(t, http.StatusBadGateway)
	bad2 := failingServer(t, http.StatusInternalServerError)

	var hits atomic.Int64
	good := stationServer(t, `[{"stationuuid":"abc","name":"Jazz FM","latitude":51.5,"longitude":-0.1}]`, &hits)

	client := NewClient(testConfig(bad1.URL, bad2.URL, good.URL))

	records, err := client.FetchByTag(context.Background(), "jazz")
	if err != nil {
		t.Fatalf("FetchByTag() error = %v, want nil", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Name != "Jazz FM" {
		t.Errorf("record name = %q, want %q", records[0].Name, "Jazz FM")
	}
	if hits.Load() != 1 {
		t.Errorf("healthy server hit %d times, want 1", hits.Load())
	}
}

func TestFetchByTagExhaustion(t *testing.T) {
	bad1 := failingServer(t, http.StatusBadGateway)
	bad2 := failingServer(t, http.StatusNotFound)
	bad3 := failingServer(t, http.StatusServiceUnavailable)

	client := NewClient(testConfig(bad1.URL, bad2.URL, bad3.URL))

	_, err := client.FetchByTag(context.Background(), "jazz")
	if !errors.Is(err, ErrAllServersFailed) {
		t.Fatalf("FetchByTag() error = %v, want ErrAllServersFailed", err)
	}
	// The joined error should name each candidate.
	for _, srv := range []*httptest.Server{bad1, bad2, bad3} {
		if !strings.Contains(err.Error(), srv.URL) {
			t.Errorf("exhaustion error missing server %s: %v", srv.URL, err)
		}
	}
}

func TestFetchByTagEmptyResultIsNotFailure(t *testing.T) {
	good := stationServer(t, `[]`, nil)
	client := NewClient(testConfig(good.URL))

	records, err := client.FetchByTag(context.Background(), "obscuretag")
	if err != nil {
		t.Fatalf("FetchByTag() error = %v, want nil", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestFetchByTagSingleModeFailsFast(t *testing.T) {
	bad := failingServer(t, http.StatusBadGateway)

	var hits atomic.Int64
	good := stationServer(t, `[]`, &hits)

	cfg := testConfig(bad.URL, good.URL)
	cfg.Mode = config.ModeSingle
	client := NewClient(cfg)

	_, err := client.FetchByTag(context.Background(), "jazz")
	if !errors.Is(err, ErrAllServersFailed) {
		t.Fatalf("FetchByTag() error = %v, want ErrAllServersFailed", err)
	}
	if hits.Load() != 0 {
		t.Errorf("second candidate hit %d times in single mode, want 0", hits.Load())
	}
}

func TestFetchByTagInvalidJSONTriggersFallback(t *testing.T) {
	broken := stationServer(t, `<html>mirror under maintenance</html>`, nil)
	good := stationServer(t, `[{"stationuuid":"x","name":"Radio"}]`, nil)

	client := NewClient(testConfig(broken.URL, good.URL))

	records, err := client.FetchByTag(context.Background(), "rock")
	if err != nil {
		t.Fatalf("FetchByTag() error = %v, want nil", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestFetchByTagAttemptTimeoutTriggersFallback(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	good := stationServer(t, `[]`, nil)

	cfg := testConfig(slow.URL, good.URL)
	cfg.AttemptTimeout = 100 * time.Millisecond
	client := NewClient(cfg)

	start := time.Now()
	_, err := client.FetchByTag(context.Background(), "jazz")
	if err != nil {
		t.Fatalf("FetchByTag() error = %v, want nil", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fallback took %s, attempt timeout not enforced", elapsed)
	}
}

func TestFetchByTagNoServers(t *testing.T) {
	client := NewClient(testConfig())
	if _, err := client.FetchByTag(context.Background(), "jazz"); !errors.Is(err, ErrNoServers) {
		t.Fatalf("FetchByTag() error = %v, want ErrNoServers", err)
	}
}

func TestFetchByTagStopsWhenContextCanceled(t *testing.T) {
	var hits atomic.Int64
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(counting.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testConfig(counting.URL, counting.URL, counting.URL))
	_, err := client.FetchByTag(ctx, "jazz")
	if err == nil {
		t.Fatal("FetchByTag() error = nil, want error")
	}
	if hits.Load() > 1 {
		t.Errorf("made %d attempts with canceled context, want at most 1", hits.Load())
	}
}

func TestSetServersIgnoresEmptyList(t *testing.T) {
	client := NewClient(testConfig("https://de1.example.org"))
	client.SetServers(nil)
	if got := client.Servers(); len(got) != 1 || got[0] != "https://de1.example.org" {
		t.Errorf("Servers() = %v, want original list preserved", got)
	}
}

func TestSetServersNormalizes(t *testing.T) {
	client := NewClient(testConfig("https://de1.example.org"))
	client.SetServers([]string{" https://fi1.example.org/ ", "", "https://at1.example.org"})

	got := client.Servers()
	want := []string{"https://fi1.example.org", "https://at1.example.org"}
	if len(got) != len(want) {
		t.Fatalf("Servers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Servers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)

	client := NewClient(testConfig(bad.URL))

	for i := 0; i < 8; i++ {
		_, _ = client.FetchByTag(context.Background(), "jazz")
	}

	// The breaker trips after five consecutive failures, so later fetches
	// never reach the server.
	if hits.Load() != 5 {
		t.Errorf("server hit %d times, want 5 (breaker should absorb the rest)", hits.Load())
	}

	health := client.Health()
	if len(health) != 1 || health[0].BreakerState != "open" {
		t.Errorf("Health() = %+v, want one open breaker", health)
	}
}

func TestHealthReportsFallbackOrder(t *testing.T) {
	client := NewClient(testConfig("https://de1.example.org", "https://fi1.example.org"))

	health := client.Health()
	if len(health) != 2 {
		t.Fatalf("Health() returned %d entries, want 2", len(health))
	}
	if health[0].Server != "https://de1.example.org" || health[1].Server != "https://fi1.example.org" {
		t.Errorf("Health() order = %+v, want configured order", health)
	}
	for _, h := range health {
		if h.BreakerState != "closed" {
			t.Errorf("breaker for %s = %s, want closed", h.Server, h.BreakerState)
		}
	}
}
