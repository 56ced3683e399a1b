// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package view holds the shared globe view: which tag is loaded, the
// normalized stations for it, and the refresh lifecycle.
//
// A refresh moves the view from idle or a settled phase through loading
// to exactly one of success, empty, or error. Refreshes are identified
// by a monotonically increasing request id; when refreshes overlap, only
// the newest id may commit, so a slow earlier response can never
// overwrite a later one.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/metrics"
	"github.com/radioglobe/radioglobe/internal/station"
)

// Phase is the lifecycle state of the globe view.
type Phase string

const (
	// PhaseIdle means no refresh has run yet.
	PhaseIdle Phase = "idle"
	// PhaseLoading means a refresh is in flight.
	PhaseLoading Phase = "loading"
	// PhaseSuccess means the last refresh produced stations.
	PhaseSuccess Phase = "success"
	// PhaseEmpty means the last refresh succeeded but matched no stations.
	PhaseEmpty Phase = "empty"
	// PhaseError means the last refresh failed on every directory server.
	PhaseError Phase = "error"
)

// ErrSuperseded is returned by Refresh when a newer refresh started
// while this one was in flight. The superseded result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// ErrEmptyTag is returned by Refresh for a blank tag.
var ErrEmptyTag = errors.New("tag must not be empty")

// Fetcher fetches raw station records for a tag. *directory.Client
// satisfies it.
type Fetcher interface {
	FetchByTag(ctx context.Context, tag string) ([]station.Raw, error)
}

// Snapshot is an immutable copy of the view state.
type Snapshot struct {
	RequestID uint64            `json:"request_id"`
	Phase     Phase             `json:"phase"`
	Tag       string            `json:"tag"`
	Stations  []station.Station `json:"stations"`
	Report    station.Report    `json:"report"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Controller owns the view state and serializes commits to it.
type Controller struct {
	fetcher Fetcher
	opts    station.Options

	// notify, when set, is called with every committed snapshot. The
	// websocket hub registers itself here.
	notify func(Snapshot)

	nextID atomic.Uint64

	mu   sync.RWMutex
	snap Snapshot
}

// NewController creates a controller in the idle phase.
func NewController(fetcher Fetcher, opts station.Options) *Controller {
	return &Controller{
		fetcher: fetcher,
		opts:    opts,
		snap:    Snapshot{Phase: PhaseIdle},
	}
}

// OnCommit registers the callback invoked with every committed snapshot,
// including the loading transition. Must be called before refreshes start.
func (c *Controller) OnCommit(fn func(Snapshot)) {
	c.notify = fn
}

// Snapshot returns a copy of the current view state. The stations slice
// is shared but never mutated after commit.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Refresh fetches and normalizes stations for the tag, committing the
// result as the new view state. It blocks until the refresh settles.
//
// If a newer refresh starts while this one is in flight, this one's
// result is discarded and ErrSuperseded is returned. A fetch that fails
// on every server commits the error phase and returns the fetch error;
// the previously loaded stations are retained so the globe does not go
// blank on a transient outage.
func (c *Controller) Refresh(ctx context.Context, tag string) (Snapshot, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return c.Snapshot(), ErrEmptyTag
	}

	id := c.nextID.Add(1)
	logger := logging.Ctx(ctx).With().Uint64("refresh_id", id).Str("tag", tag).Logger()

	if !c.commitLoading(id, tag) {
		logger.Debug().Msg("refresh superseded before loading")
		metrics.ViewRefreshes.WithLabelValues("superseded").Inc()
		return c.Snapshot(), ErrSuperseded
	}
	logger.Info().Msg("view refresh started")

	records, fetchErr := c.fetcher.FetchByTag(ctx, tag)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.RequestID != id {
		logger.Info().Uint64("current_id", c.snap.RequestID).Msg("refresh superseded, discarding result")
		metrics.ViewRefreshes.WithLabelValues("superseded").Inc()
		return c.snap, ErrSuperseded
	}

	next := Snapshot{
		RequestID: id,
		Tag:       tag,
		UpdatedAt: time.Now().UTC(),
	}

	switch {
	case fetchErr != nil:
		next.Phase = PhaseError
		next.Error = fetchErr.Error()
		// Keep what the globe already shows.
		next.Stations = c.snap.Stations
		next.Report = c.snap.Report
		logger.Error().Err(fetchErr).Msg("view refresh failed")
	default:
		stations, report := station.Normalize(records, c.opts)
		next.Stations = stations
		next.Report = report
		if len(stations) == 0 {
			next.Phase = PhaseEmpty
		} else {
			next.Phase = PhaseSuccess
		}
		logger.Info().Str("phase", string(next.Phase)).Int("stations", len(stations)).Msg("view refresh settled")
	}

	c.snap = next
	metrics.ViewRefreshes.WithLabelValues(string(next.Phase)).Inc()
	c.broadcast(next)

	if fetchErr != nil {
		return next, fetchErr
	}
	return next, nil
}

// commitLoading publishes the loading phase for the refresh, unless a
// newer refresh already claimed the view. Stations from the previous
// settled phase stay visible while loading.
func (c *Controller) commitLoading(id uint64, tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.RequestID > id {
		return false
	}

	c.snap = Snapshot{
		RequestID: id,
		Phase:     PhaseLoading,
		Tag:       tag,
		Stations:  c.snap.Stations,
		Report:    c.snap.Report,
		UpdatedAt: time.Now().UTC(),
	}
	c.broadcast(c.snap)
	return true
}

// broadcast invokes the commit callback. Callers hold c.mu; the callback
// must not call back into the controller.
func (c *Controller) broadcast(snap Snapshot) {
	if c.notify != nil {
		c.notify(snap)
	}
}
