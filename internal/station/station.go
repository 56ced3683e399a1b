// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package station converts raw, loosely-typed station records from the
// directory API into clean, deduplicated, coordinate-valid records ready
// for rendering on the globe.
//
// Directory servers do not agree on field types: coordinates arrive as
// numbers or numeric strings, sometimes under alternate names (geo_lat,
// geo_long), and tags arrive as a comma-separated string or an array.
// The Raw type absorbs all of that variance at decode time; Normalize
// applies the duplicate rule and the size cap.
package station

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Number is a float64 that decodes from a JSON number, a numeric string,
// or null. A value that cannot be parsed leaves Valid false instead of
// failing the decode — one malformed record must never poison the batch.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	n.Value, n.Valid = 0, false

	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// Quoted numeric string
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil //nolint:nilerr // malformed value means "absent", not failure
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	n.Value, n.Valid = v, true
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid numbers encode as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// TagList decodes from either a comma-separated string or an array of
// strings, normalizing to a trimmed slice with empties removed.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	*t = nil

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	if trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return nil //nolint:nilerr // malformed tags degrade to none
		}
		*t = cleanTags(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil //nolint:nilerr
	}
	*t = cleanTags(strings.Split(s, ","))
	return nil
}

// cleanTags trims each tag and drops empties.
func cleanTags(items []string) []string {
	var out []string
	for _, item := range items {
		if tag := strings.TrimSpace(item); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Raw is a station record as the directory returns it, before any
// validation. Field variance is absorbed by Number and TagList.
type Raw struct {
	UUID        string  `json:"stationuuid"`
	Name        string  `json:"name"`
	Latitude    Number  `json:"latitude"`
	Longitude   Number  `json:"longitude"`
	GeoLat      Number  `json:"geo_lat"`
	GeoLong     Number  `json:"geo_long"`
	URLResolved string  `json:"url_resolved"`
	Favicon     string  `json:"favicon"`
	Country     string  `json:"country"`
	Tags        TagList `json:"tags"`
	Bitrate     Number  `json:"bitrate"`
	Codec       string  `json:"codec"`
	Homepage    string  `json:"homepage"`
}

// lat returns the record's latitude, preferring `latitude` over `geo_lat`.
func (r *Raw) lat() Number {
	if r.Latitude.Valid {
		return r.Latitude
	}
	return r.GeoLat
}

// long returns the record's longitude, preferring `longitude` over `geo_long`.
func (r *Raw) long() Number {
	if r.Longitude.Valid {
		return r.Longitude
	}
	return r.GeoLong
}

// Station is a canonical, render-ready station record. Every Station has
// finite, in-range coordinates.
type Station struct {
	UUID      string   `json:"stationuuid,omitempty"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	StreamURL string   `json:"url_resolved,omitempty"`
	Favicon   string   `json:"favicon,omitempty"`
	Country   string   `json:"country,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Bitrate   int      `json:"bitrate,omitempty"`
	Codec     string   `json:"codec,omitempty"`
	Homepage  string   `json:"homepage,omitempty"`
}

// DecodeRecords decodes a directory payload into raw records. Anything
// that is not a JSON array yields zero records: the directory
// occasionally responds with an error object or an empty body, and both
// mean "no stations", not "fetch failure".
//
// Elements are decoded one at a time so a single malformed record (a
// name arriving as a number, say) cannot discard the rest of the batch.
// A record that fails to decode becomes an empty Raw, which Normalize
// drops and counts like any other record without usable coordinates.
func DecodeRecords(data []byte) []Raw {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil
	}

	records := make([]Raw, len(elements))
	for i, element := range elements {
		if err := json.Unmarshal(element, &records[i]); err != nil {
			records[i] = Raw{}
		}
	}
	return records
}
