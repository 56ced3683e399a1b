// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/radioglobe/radioglobe/internal/logging"
)

// Mirror is one entry from the directory's server listing endpoint. The
// endpoint returns one entry per DNS record, so the same name appears
// multiple times (IPv4 and IPv6).
type Mirror struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// DiscoverServers fetches the directory's mirror listing and returns the
// deduplicated set of mirrors as HTTPS base URLs, sorted by name for a
// stable fallback order.
func (c *Client) DiscoverServers(ctx context.Context) ([]string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.cfg.DiscoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}
	req.Header.Set("User-Agent", "radioglobe/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read discovery body: %w", err)
	}

	var mirrors []Mirror
	if err := json.Unmarshal(body, &mirrors); err != nil {
		return nil, fmt.Errorf("decode mirror list: %w", err)
	}

	seen := make(map[string]struct{}, len(mirrors))
	servers := make([]string, 0, len(mirrors))
	for _, m := range mirrors {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		servers = append(servers, "https://"+name)
	}
	sort.Strings(servers)

	if len(servers) == 0 {
		return nil, fmt.Errorf("mirror list contained no usable entries")
	}
	return servers, nil
}

// RefreshServers runs one discovery pass and installs the result. A failed
// pass is logged and swallowed; the current candidate list stays in effect.
func (c *Client) RefreshServers(ctx context.Context) {
	servers, err := c.DiscoverServers(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("mirror discovery failed, keeping current candidates")
		return
	}
	c.SetServers(servers)
}
