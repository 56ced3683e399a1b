// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package mood carries the curated tag catalog the globe UI offers as
// quick picks. Each entry is a real radio-browser tag plus edges to
// related tags, so the UI can suggest nearby moods instead of dumping
// the directory's full tag list (tens of thousands of entries, most of
// them noise).
package mood

import "sort"

// Tag is one curated entry in the catalog.
type Tag struct {
	// Name is the radio-browser tag queried by the fetcher.
	Name string `json:"name"`
	// Label is the display name shown in the UI.
	Label string `json:"label"`
	// Related lists catalog tags adjacent in mood. The UI surfaces these
	// as "try next" suggestions; transitions only follow edges.
	Related []string `json:"related"`
}

// catalog maps tag names to their entries. Every name in a Related list
// must itself be a catalog key; TestCatalogEdgesResolve enforces it.
var catalog = map[string]Tag{
	"ambient": {
		Name: "ambient", Label: "Ambient",
		Related: []string{"chillout", "classical"},
	},
	"chillout": {
		Name: "chillout", Label: "Chillout",
		Related: []string{"ambient", "lounge", "electronic"},
	},
	"lounge": {
		Name: "lounge", Label: "Lounge",
		Related: []string{"chillout", "jazz"},
	},
	"jazz": {
		Name: "jazz", Label: "Jazz",
		Related: []string{"lounge", "blues", "classical"},
	},
	"blues": {
		Name: "blues", Label: "Blues",
		Related: []string{"jazz", "rock"},
	},
	"classical": {
		Name: "classical", Label: "Classical",
		Related: []string{"ambient", "jazz"},
	},
	"electronic": {
		Name: "electronic", Label: "Electronic",
		Related: []string{"chillout", "dance", "techno"},
	},
	"dance": {
		Name: "dance", Label: "Dance",
		Related: []string{"electronic", "pop", "house"},
	},
	"house": {
		Name: "house", Label: "House",
		Related: []string{"dance", "techno"},
	},
	"techno": {
		Name: "techno", Label: "Techno",
		Related: []string{"electronic", "house"},
	},
	"pop": {
		Name: "pop", Label: "Pop",
		Related: []string{"dance", "rock", "oldies"},
	},
	"rock": {
		Name: "rock", Label: "Rock",
		Related: []string{"pop", "metal", "blues", "indie"},
	},
	"indie": {
		Name: "indie", Label: "Indie",
		Related: []string{"rock", "alternative"},
	},
	"alternative": {
		Name: "alternative", Label: "Alternative",
		Related: []string{"indie", "rock"},
	},
	"metal": {
		Name: "metal", Label: "Metal",
		Related: []string{"rock"},
	},
	"oldies": {
		Name: "oldies", Label: "Oldies",
		Related: []string{"pop", "country"},
	},
	"country": {
		Name: "country", Label: "Country",
		Related: []string{"oldies", "folk"},
	},
	"folk": {
		Name: "folk", Label: "Folk",
		Related: []string{"country", "world"},
	},
	"world": {
		Name: "world", Label: "World",
		Related: []string{"folk", "latin"},
	},
	"latin": {
		Name: "latin", Label: "Latin",
		Related: []string{"world", "dance"},
	},
	"news": {
		Name: "news", Label: "News & Talk",
		Related: []string{"talk"},
	},
	"talk": {
		Name: "talk", Label: "Talk",
		Related: []string{"news"},
	},
}

// Names returns all catalog tag names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all catalog entries, sorted by name.
func All() []Tag {
	names := Names()
	tags := make([]Tag, len(names))
	for i, name := range names {
		tags[i] = catalog[name]
	}
	return tags
}

// Lookup returns the catalog entry for a tag name.
func Lookup(name string) (Tag, bool) {
	t, ok := catalog[name]
	return t, ok
}

// Valid reports whether a tag is in the catalog. Arbitrary directory
// tags are still fetchable; this only gates catalog features.
func Valid(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Related returns the related tags for a catalog entry, or nil for tags
// outside the catalog.
func Related(name string) []string {
	t, ok := catalog[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.Related))
	copy(out, t.Related)
	return out
}
