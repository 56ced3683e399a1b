// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Command server runs the RadioGlobe backend: it fetches stations from
// the radio-browser directory with mirror fallback, normalizes them for
// the globe, and serves the HTTP API, websocket updates, and embedded UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/radioglobe/radioglobe/internal/api"
	"github.com/radioglobe/radioglobe/internal/cache"
	"github.com/radioglobe/radioglobe/internal/config"
	"github.com/radioglobe/radioglobe/internal/directory"
	"github.com/radioglobe/radioglobe/internal/favorites"
	"github.com/radioglobe/radioglobe/internal/logging"
	"github.com/radioglobe/radioglobe/internal/station"
	"github.com/radioglobe/radioglobe/internal/supervisor"
	"github.com/radioglobe/radioglobe/internal/view"
	ws "github.com/radioglobe/radioglobe/internal/websocket"
)

// initialRefreshTimeout bounds the startup fetch of the default tag.
const initialRefreshTimeout = time.Minute

func main() {
	// Optional .env for development; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Directory.Mode).
		Int("servers", len(cfg.Directory.Servers)).
		Str("default_tag", cfg.View.DefaultTag).
		Msg("starting RadioGlobe")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core components.
	dirClient := directory.NewClient(cfg.Directory)
	viewCtrl := view.NewController(dirClient, station.Options{
		MaxStations:    cfg.Normalize.MaxStations,
		CoordTolerance: cfg.Normalize.CoordTolerance,
		SampleSize:     cfg.Normalize.SampleSize,
	})
	favStore := favorites.NewStore()
	tagCache := cache.New(5 * time.Minute)
	defer tagCache.Stop()

	wsHub := ws.NewHub()
	viewCtrl.OnCommit(wsHub.BroadcastViewUpdate)

	// HTTP surface.
	handler := api.NewHandler(cfg, viewCtrl, dirClient, favStore, tagCache, wsHub)
	router := api.NewRouter(handler, cfg.Security)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree: messaging layer (hub, mirror refresher) and api
	// layer (HTTP server). sutureslog needs slog, so bridge zerolog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddMessagingService(wsHub)
	if cfg.Directory.DiscoveryEnabled {
		tree.AddMessagingService(directory.NewMirrorRefresher(dirClient))
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("services added to supervisor tree")

	// Load the default tag so the globe is not empty on first paint.
	if tag := cfg.View.DefaultTag; tag != "" {
		go func() {
			refreshCtx, refreshCancel := context.WithTimeout(ctx, initialRefreshTimeout)
			defer refreshCancel()

			if _, err := viewCtrl.Refresh(refreshCtx, tag); err != nil && !errors.Is(err, view.ErrSuperseded) {
				logging.Warn().Err(err).Str("tag", tag).Msg("initial view refresh failed")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	// ServeBackground delivers the terminal error once the whole tree
	// has stopped, so receiving here doubles as the shutdown wait.
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("radioglobe stopped gracefully")
}
