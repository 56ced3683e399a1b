// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

package station

import (
	"math"
	"strings"
	"time"

	"github.com/radioglobe/radioglobe/internal/metrics"
)

// Options control normalization.
type Options struct {
	// MaxStations caps the result after deduplication. First N survive.
	MaxStations int

	// CoordTolerance is the coordinate equality tolerance in degrees used
	// by the duplicate rule. Stations closer than this on both axes are
	// "at the same place".
	CoordTolerance float64

	// SampleSize is how many raw input records the report keeps for the
	// debug view.
	SampleSize int
}

// DefaultOptions mirror the server defaults.
func DefaultOptions() Options {
	return Options{
		MaxStations:    500,
		CoordTolerance: 0.001,
		SampleSize:     3,
	}
}

// Report is informational bookkeeping about one normalization pass. It
// backs the debug panel and never affects the returned station list.
type Report struct {
	RawCount      int       `json:"raw_count"`
	Kept          int       `json:"kept"`
	DroppedCoords int       `json:"dropped_coords"`
	Duplicates    int       `json:"duplicates"`
	Truncated     int       `json:"truncated"`
	Timestamp     time.Time `json:"timestamp"`
	Sample        []Raw     `json:"sample,omitempty"`
}

// Normalize converts raw directory records into canonical stations.
//
// Per record: coordinates are coerced (latitude from `latitude` else
// `geo_lat`, same for longitude); a record whose coordinates are not
// finite in-range numbers is dropped silently. Duplicates of an earlier
// record are discarded — see Duplicate for the rule. After deduplication
// the result is truncated to opts.MaxStations. Input order is preserved
// throughout.
//
// Normalize never fails: malformed records degrade to "dropped".
func Normalize(records []Raw, opts Options) ([]Station, Report) {
	if opts.MaxStations <= 0 {
		opts.MaxStations = DefaultOptions().MaxStations
	}

	report := Report{
		RawCount:  len(records),
		Timestamp: time.Now().UTC(),
	}
	if opts.SampleSize > 0 && len(records) > 0 {
		n := opts.SampleSize
		if n > len(records) {
			n = len(records)
		}
		report.Sample = append([]Raw(nil), records[:n]...)
	}

	var kept []Station
	// Duplicates can only share a normalized name or a stream URL, so two
	// small indexes cover all three clauses of the rule.
	byName := make(map[string][]int)
	byURL := make(map[string][]int)

	for i := range records {
		r := &records[i]

		lat, long := r.lat(), r.long()
		if !validCoords(lat, long) {
			report.DroppedCoords++
			metrics.NormalizerRecords.WithLabelValues("dropped_coords").Inc()
			continue
		}

		s := Station{
			UUID:      r.UUID,
			Name:      strings.TrimSpace(r.Name),
			Latitude:  lat.Value,
			Longitude: long.Value,
			StreamURL: strings.TrimSpace(r.URLResolved),
			Favicon:   r.Favicon,
			Country:   r.Country,
			Tags:      r.Tags,
			Codec:     r.Codec,
			Homepage:  r.Homepage,
		}
		if r.Bitrate.Valid {
			s.Bitrate = int(r.Bitrate.Value)
		}

		if isDuplicate(&s, kept, byName, byURL, opts.CoordTolerance) {
			report.Duplicates++
			metrics.NormalizerRecords.WithLabelValues("duplicate").Inc()
			continue
		}

		idx := len(kept)
		kept = append(kept, s)
		byName[normalizeName(s.Name)] = append(byName[normalizeName(s.Name)], idx)
		if s.StreamURL != "" {
			byURL[s.StreamURL] = append(byURL[s.StreamURL], idx)
		}
		metrics.NormalizerRecords.WithLabelValues("kept").Inc()
	}

	if len(kept) > opts.MaxStations {
		report.Truncated = len(kept) - opts.MaxStations
		metrics.NormalizerRecords.WithLabelValues("truncated").Add(float64(report.Truncated))
		kept = kept[:opts.MaxStations]
	}

	report.Kept = len(kept)
	return kept, report
}

// Duplicate reports whether b duplicates a. Two stations are duplicates
// when ANY of these pairwise matches hold:
//
//	(a) same normalized name AND coordinates within tolerance
//	(b) same normalized name AND same stream URL
//	(c) coordinates within tolerance AND same stream URL
//
// Name comparison is case-insensitive and trimmed. Stream URLs compare
// equal only when both are non-empty; two stations that both lack a
// stream URL are not duplicates on that basis alone.
func Duplicate(a, b *Station, tolerance float64) bool {
	sameName := normalizeName(a.Name) == normalizeName(b.Name)
	sameCoords := coordsClose(a, b, tolerance)
	sameURL := a.StreamURL != "" && a.StreamURL == b.StreamURL

	return (sameName && sameCoords) || (sameName && sameURL) || (sameCoords && sameURL)
}

// isDuplicate checks s against already-kept stations that share its name
// or stream URL. Stations sharing neither cannot match any clause.
func isDuplicate(s *Station, kept []Station, byName, byURL map[string][]int, tolerance float64) bool {
	for _, idx := range byName[normalizeName(s.Name)] {
		if Duplicate(&kept[idx], s, tolerance) {
			return true
		}
	}
	if s.StreamURL != "" {
		for _, idx := range byURL[s.StreamURL] {
			if Duplicate(&kept[idx], s, tolerance) {
				return true
			}
		}
	}
	return false
}

// normalizeName lowercases and trims a station name for comparison.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// coordsClose reports coordinate equality within tolerance on both axes.
// A zero tolerance degrades to exact equality.
func coordsClose(a, b *Station, tolerance float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= tolerance &&
		math.Abs(a.Longitude-b.Longitude) <= tolerance
}

// validCoords requires both coordinates to be present, finite, and within
// geographic range.
func validCoords(lat, long Number) bool {
	if !lat.Valid || !long.Valid {
		return false
	}
	return lat.Value >= -90 && lat.Value <= 90 && long.Value >= -180 && long.Value <= 180
}
