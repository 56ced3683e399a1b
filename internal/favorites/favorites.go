// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package favorites keeps the session's starred stations. Storage is
// in-memory only: favorites live as long as the server process, and the
// browser additionally mirrors them in localStorage.
package favorites

import (
	"sort"
	"sync"
	"time"

	"github.com/radioglobe/radioglobe/internal/station"
)

// Entry is one starred station with the time it was starred.
type Entry struct {
	Station station.Station `json:"station"`
	AddedAt time.Time       `json:"added_at"`
}

// Store is a concurrency-safe favorites collection keyed by station UUID.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Add stars a station. Re-adding an existing favorite keeps the original
// AddedAt. It reports whether the station was newly added.
func (s *Store) Add(st station.Station) bool {
	if st.UUID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[st.UUID]; ok {
		return false
	}
	s.entries[st.UUID] = Entry{Station: st, AddedAt: time.Now().UTC()}
	return true
}

// Remove unstars a station by UUID. It reports whether it was present.
func (s *Store) Remove(uuid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[uuid]; !ok {
		return false
	}
	delete(s.entries, uuid)
	return true
}

// Has reports whether a station is starred.
func (s *Store) Has(uuid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[uuid]
	return ok
}

// List returns all favorites, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.After(out[j].AddedAt)
		}
		return out[i].Station.UUID < out[j].Station.UUID
	})
	return out
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
