// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package config loads and validates RadioGlobe configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an
// optional YAML file, then environment variables. ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the RadioGlobe server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Directory DirectoryConfig `koanf:"directory"`
	Normalize NormalizeConfig `koanf:"normalize"`
	View      ViewConfig      `koanf:"view"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DirectoryMode selects how the station fetcher walks its candidate servers.
const (
	// ModeFallback tries each candidate in order until one succeeds.
	ModeFallback = "fallback"
	// ModeSingle issues one request to the first candidate and fails
	// immediately on any error.
	ModeSingle = "single"
)

// DirectoryConfig holds settings for the upstream station directory
// (radio-browser.info or a compatible API).
type DirectoryConfig struct {
	// Servers is the ordered list of candidate server base URLs. The order
	// is the fallback order; it is never shuffled.
	Servers []string `koanf:"servers" validate:"required,min=1,dive,url"`

	// Mode is "fallback" (try candidates in order) or "single" (first
	// candidate only, fail fast).
	Mode string `koanf:"mode" validate:"oneof=fallback single"`

	// AttemptTimeout bounds each individual server attempt.
	AttemptTimeout time.Duration `koanf:"attempt_timeout"`

	// DiscoveryEnabled refreshes the candidate list from the directory's
	// mirror listing endpoint. On discovery failure the configured static
	// Servers list stays in effect.
	DiscoveryEnabled  bool          `koanf:"discovery_enabled"`
	DiscoveryURL      string        `koanf:"discovery_url" validate:"omitempty,url"`
	DiscoveryInterval time.Duration `koanf:"discovery_interval"`

	// ClickReporting forwards station play events to the directory's
	// click-count endpoint. Best-effort only.
	ClickReporting bool `koanf:"click_reporting"`
}

// NormalizeConfig holds station normalizer settings.
type NormalizeConfig struct {
	// MaxStations caps the normalized result set to protect rendering
	// performance in the browser.
	MaxStations int `koanf:"max_stations" validate:"min=1,max=10000"`

	// CoordTolerance is the coordinate equality tolerance, in degrees,
	// used by duplicate detection.
	CoordTolerance float64 `koanf:"coord_tolerance" validate:"min=0"`

	// SampleSize is how many raw records the debug report retains.
	SampleSize int `koanf:"sample_size" validate:"min=0,max=100"`
}

// ViewConfig holds settings for the shared view state machine.
type ViewConfig struct {
	// DefaultTag is loaded when the server starts, so the globe is never
	// empty on first paint. Empty disables the initial fetch.
	DefaultTag string `koanf:"default_tag" validate:"omitempty,stationtag"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8310,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Directory: DirectoryConfig{
			// Public radio-browser.info mirrors, in preference order.
			Servers: []string{
				"https://de1.api.radio-browser.info",
				"https://fi1.api.radio-browser.info",
				"https://at1.api.radio-browser.info",
			},
			Mode:              ModeFallback,
			AttemptTimeout:    5 * time.Second,
			DiscoveryEnabled:  true,
			DiscoveryURL:      "https://all.api.radio-browser.info/json/servers",
			DiscoveryInterval: 30 * time.Minute,
			ClickReporting:    true,
		},
		Normalize: NormalizeConfig{
			MaxStations:    500,
			CoordTolerance: 0.001,
			SampleSize:     3,
		},
		View: ViewConfig{
			DefaultTag: "jazz",
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks that the configuration is complete and consistent.
// Struct-tag rules run first, then the handful of cross-field checks the
// tags cannot express.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	if c.Directory.AttemptTimeout <= 0 {
		return fmt.Errorf("directory.attempt_timeout must be positive, got %s", c.Directory.AttemptTimeout)
	}
	if c.Directory.DiscoveryEnabled {
		if c.Directory.DiscoveryURL == "" {
			return fmt.Errorf("directory.discovery_url is required when discovery is enabled")
		}
		if c.Directory.DiscoveryInterval <= 0 {
			return fmt.Errorf("directory.discovery_interval must be positive, got %s", c.Directory.DiscoveryInterval)
		}
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
	}

	return nil
}
