// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/metrics"
	"github.com/radioglobe/radioglobe/internal/station"
)

// maxResponseBytes bounds a directory response body. The largest tag on
// radio-browser is a few MB of JSON; anything beyond this is misbehavior.
const maxResponseBytes = 32 << 20 // 32 MB

// Client fetches station lists from the directory with sequential
// fallback across candidate servers.
//
// Candidates are tried strictly in list order. Each attempt is bounded by
// the configured per-attempt timeout; any failure (network error,
// non-success status, timeout, invalid JSON, open breaker) abandons that
// candidate and moves to the next. The first success short-circuits. Only
// exhaustion of every candidate is surfaced as an error.
//
// In single mode only the first candidate is attempted and any failure is
// immediately terminal.
type Client struct {
	cfg        config.DirectoryConfig
	httpClient *http.Client

	mu       sync.RWMutex
	servers  []string
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a directory client from configuration.
func NewClient(cfg config.DirectoryConfig) *Client {
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Per-attempt deadlines come from the request context; the
			// client-level timeout is a safety net only.
			Timeout: cfg.AttemptTimeout + 5*time.Second,
		},
		servers:  normalizeServers(cfg.Servers),
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
	metrics.DirectoryMirrorCount.Set(float64(len(c.servers)))
	return c
}

// normalizeServers trims trailing slashes and drops empties.
func normalizeServers(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimRight(strings.TrimSpace(s), "/")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Servers returns a copy of the current candidate list, in fallback order.
func (c *Client) Servers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.servers))
	copy(out, c.servers)
	return out
}

// SetServers replaces the candidate list. An empty list is ignored so a
// bad discovery pass can never leave the client with nothing to try.
func (c *Client) SetServers(servers []string) {
	servers = normalizeServers(servers)
	if len(servers) == 0 {
		return
	}
	c.mu.Lock()
	c.servers = servers
	c.mu.Unlock()
	metrics.DirectoryMirrorCount.Set(float64(len(servers)))
	logging.Info().Int("count", len(servers)).Msg("directory candidate list updated")
}

// candidates returns the servers to try for one operation, honoring the
// configured mode.
func (c *Client) candidates() []string {
	servers := c.Servers()
	if c.cfg.Mode == config.ModeSingle && len(servers) > 1 {
		servers = servers[:1]
	}
	return servers
}

// FetchByTag fetches raw station records matching the tag.
//
// A successful fetch that matches zero stations returns an empty slice
// and a nil error; ErrAllServersFailed is returned only when every
// candidate failed.
func (c *Client) FetchByTag(ctx context.Context, tag string) ([]station.Raw, error) {
	path := "/json/stations/bytag/" + url.PathEscape(strings.TrimSpace(tag))

	payload, err := c.fetchFirst(ctx, path)
	if err != nil {
		return nil, err
	}
	return station.DecodeRecords(payload), nil
}

// fetchFirst walks the candidate list and returns the first successful
// payload. All candidate failures are collected and joined into the
// exhaustion error.
func (c *Client) fetchFirst(ctx context.Context, path string) ([]byte, error) {
	servers := c.candidates()
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	start := time.Now()
	var attemptErrs []error

	for i, base := range servers {
		payload, err := c.attempt(ctx, base, path)
		if err == nil {
			metrics.DirectoryFetchDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
			return payload, nil
		}

		attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", base, err))
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Str("server", base).Msg("directory attempt failed")

		if i < len(servers)-1 {
			metrics.DirectoryFallbacks.Inc()
		}

		// A canceled parent context means the caller is gone; walking the
		// remaining candidates would only burn their breakers.
		if ctx.Err() != nil {
			break
		}
	}

	metrics.DirectoryExhaustions.Inc()
	metrics.DirectoryFetchDuration.WithLabelValues("exhausted").Observe(time.Since(start).Seconds())
	return nil, fmt.Errorf("%w: %w", ErrAllServersFailed, errors.Join(attemptErrs...))
}

// attempt issues one bounded request against one candidate server.
func (c *Client) attempt(ctx context.Context, base, path string) ([]byte, error) {
	breaker := c.breakerFor(base)

	payload, err := breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, base, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordDirectoryAttempt(base, "breaker_open")
		}
		return nil, err
	}

	metrics.RecordDirectoryAttempt(base, "success")
	return payload, nil
}

// doRequest performs the HTTP exchange and validates the payload is JSON.
func (c *Client) doRequest(ctx context.Context, base, path string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, base+path, nil)
	if err != nil {
		metrics.RecordDirectoryAttempt(base, "network_error")
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "radioglobe/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			metrics.RecordDirectoryAttempt(base, "timeout")
			return nil, fmt.Errorf("attempt timed out after %s: %w", c.cfg.AttemptTimeout, err)
		}
		metrics.RecordDirectoryAttempt(base, "network_error")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordDirectoryAttempt(base, "http_error")
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordDirectoryAttempt(base, "network_error")
		return nil, fmt.Errorf("read body: %w", err)
	}

	if !json.Valid(payload) {
		metrics.RecordDirectoryAttempt(base, "decode_error")
		return nil, errors.New("response is not valid JSON")
	}

	return payload, nil
}

// breakerFor returns (creating if needed) the circuit breaker for a server.
// Breakers survive SetServers so a flapping mirror that is re-discovered
// keeps its failure history.
func (c *Client) breakerFor(base string) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.RLock()
	b, ok := c.breakers[base]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok = c.breakers[base]; ok {
		return b
	}

	b = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        base,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Station fetches are cheap; a short run of consecutive
			// failures is enough signal to stand the mirror down.
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("server", name).Str("from", breakerStateString(from)).Str("to", breakerStateString(to)).Msg("directory breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.BreakerTransitions.WithLabelValues(name, breakerStateString(from), breakerStateString(to)).Inc()
		},
	})
	c.breakers[base] = b
	return b
}

// breakerStateString converts a gobreaker state to a label value.
func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// breakerStateValue converts a gobreaker state to a gauge value.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// CandidateHealth describes one candidate server for the debug view.
type CandidateHealth struct {
	Server       string `json:"server"`
	BreakerState string `json:"breaker_state"`
}

// Health reports the candidate list with breaker states, in fallback order.
func (c *Client) Health() []CandidateHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CandidateHealth, len(c.servers))
	for i, base := range c.servers {
		state := "closed"
		if b, ok := c.breakers[base]; ok {
			state = breakerStateString(b.State())
		}
		out[i] = CandidateHealth{Server: base, BreakerState: state}
	}
	return out
}
