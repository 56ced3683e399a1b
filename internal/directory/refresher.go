// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"time"

	"github.com/radioglobe/radioglobe/internal/logging"
)

// MirrorRefresher periodically rediscovers the directory's mirror list.
// It implements suture.Service and runs under the supervision tree.
type MirrorRefresher struct {
	client   *Client
	interval time.Duration
}

// NewMirrorRefresher creates a refresher for the given client, ticking at
// the configured discovery interval.
func NewMirrorRefresher(client *Client) *MirrorRefresher {
	return &MirrorRefresher{
		client:   client,
		interval: client.cfg.DiscoveryInterval,
	}
}

// Serve runs discovery immediately and then on every tick until the
// context is canceled. Discovery failures are absorbed inside
// RefreshServers, so Serve only returns on shutdown.
func (r *MirrorRefresher) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", r.interval).Msg("mirror refresher started")

	r.client.RefreshServers(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("mirror refresher stopping")
			return ctx.Err()
		case <-ticker.C:
			r.client.RefreshServers(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (r *MirrorRefresher) String() string {
	return "mirror-refresher"
}
