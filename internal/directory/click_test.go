// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReportClickDisabled(t *testing.T) {
	cfg := testConfig("https://de1.example.org")
	cfg.ClickReporting = false
	client := NewClient(cfg)

	if resp := client.ReportClick(context.Background(), "abc-123"); resp != nil {
		t.Errorf("ReportClick() = %+v, want nil when reporting is disabled", resp)
	}
}

func TestReportClickForwardsToDirectory(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"message":"retrieved station url","stationuuid":"abc-123","name":"Jazz FM","url":"https://stream.example.org/jazz"}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.ClickReporting = true
	client := NewClient(cfg)

	resp := client.ReportClick(context.Background(), "abc-123")
	if resp == nil {
		t.Fatal("ReportClick() = nil, want response")
	}
	if !resp.OK || resp.StationUUID != "abc-123" {
		t.Errorf("ReportClick() = %+v, want ok response for abc-123", resp)
	}
	if !strings.HasPrefix(gotPath, "/json/url/") {
		t.Errorf("click hit path %q, want /json/url/ prefix", gotPath)
	}
}

func TestReportClickSwallowsFailure(t *testing.T) {
	bad := failingServer(t, http.StatusBadGateway)

	cfg := testConfig(bad.URL)
	cfg.ClickReporting = true
	client := NewClient(cfg)

	if resp := client.ReportClick(context.Background(), "abc-123"); resp != nil {
		t.Errorf("ReportClick() = %+v, want nil on directory failure", resp)
	}
}
