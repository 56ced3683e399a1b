// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package directory

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/radioglobe/radioglobe/internal/logging"
)

// ClickResponse is the directory's acknowledgement of a play event. The
// directory uses click counts to rank stations, so reporting plays keeps
// popular stations discoverable for everyone.
type ClickResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
}

// ReportClick tells the directory a station was played. It walks the
// candidate list like a fetch, but a failure is only logged: a lost click
// never disturbs playback.
func (c *Client) ReportClick(ctx context.Context, stationUUID string) *ClickResponse {
	if !c.cfg.ClickReporting {
		return nil
	}

	path := "/json/url/" + url.PathEscape(stationUUID)
	payload, err := c.fetchFirst(ctx, path)
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Str("station_uuid", stationUUID).Msg("click report failed")
		return nil
	}

	var resp ClickResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Str("station_uuid", stationUUID).Msg("click response malformed")
		return nil
	}
	return &resp
}
