// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/radioglobe/radioglobe/internal/logging"
)

//go:embed static
var staticFiles embed.FS

// staticHandler serves the embedded globe UI. Unknown paths fall back to
// index.html so the UI owns its own routing.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal().Err(err).Msg("embedded static tree is missing")
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		if _, err := fs.Stat(sub, path[1:]); err != nil {
			r.URL.Path = "/index.html"
		} else {
			r.URL.Path = path
		}
		fileServer.ServeHTTP(w, r)
	})
}
