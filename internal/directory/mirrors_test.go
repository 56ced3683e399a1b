// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoverServersDeduplicatesAndSorts(t *testing.T) {
	// The listing endpoint returns one entry per DNS record, so each
	// mirror name appears once per address family.
	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"ip":"2a0a:4cc0::1","name":"fi1.api.example.org"},
			{"ip":"95.179.139.106","name":"fi1.api.example.org"},
			{"ip":"152.53.84.231","name":"de2.api.example.org"},
			{"ip":"","name":"  "},
			{"ip":"89.58.16.19","name":"at1.api.example.org"}
		]`)) //nolint:errcheck
	}))
	t.Cleanup(listing.Close)

	cfg := testConfig("https://seed.example.org")
	cfg.DiscoveryEnabled = true
	cfg.DiscoveryURL = listing.URL
	client := NewClient(cfg)

	servers, err := client.DiscoverServers(context.Background())
	if err != nil {
		t.Fatalf("DiscoverServers() error = %v, want nil", err)
	}

	want := []string{
		"https://at1.api.example.org",
		"https://de2.api.example.org",
		"https://fi1.api.example.org",
	}
	if len(servers) != len(want) {
		t.Fatalf("DiscoverServers() = %v, want %v", servers, want)
	}
	for i := range want {
		if servers[i] != want[i] {
			t.Errorf("servers[%d] = %q, want %q", i, servers[i], want[i])
		}
	}
}

func TestDiscoverServersRejectsEmptyListing(t *testing.T) {
	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	t.Cleanup(listing.Close)

	cfg := testConfig("https://seed.example.org")
	cfg.DiscoveryURL = listing.URL
	client := NewClient(cfg)

	if _, err := client.DiscoverServers(context.Background()); err == nil {
		t.Fatal("DiscoverServers() error = nil, want error for empty listing")
	}
}

func TestRefreshServersKeepsCandidatesOnFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(broken.Close)

	cfg := testConfig("https://seed.example.org")
	cfg.DiscoveryURL = broken.URL
	client := NewClient(cfg)

	client.RefreshServers(context.Background())

	if got := client.Servers(); len(got) != 1 || got[0] != "https://seed.example.org" {
		t.Errorf("Servers() = %v, want seed list preserved after failed discovery", got)
	}
}
