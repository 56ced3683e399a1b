// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package directory is the client for the upstream station directory
// (radio-browser.info or a compatible API). The directory is served by
// several interchangeable, independently operated mirrors; this package
// owns the candidate list and the sequential fallback across it.
package directory

import "errors"

// Sentinel errors for directory operations.
var (
	// ErrAllServersFailed reports that every candidate server failed.
	// It is a fetch failure, distinct from a successful fetch that
	// matched zero stations.
	ErrAllServersFailed = errors.New("all directory servers failed")

	// ErrNoServers reports an empty candidate list.
	ErrNoServers = errors.New("no directory servers configured")
)
