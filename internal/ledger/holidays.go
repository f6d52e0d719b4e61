package ledger

import (
	"sort"
	"sync"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/Azure/go-autorest/autorest/date"
)

// HolidaySet is the shop wide company holiday collection shared by every
// open ledger. Every mutation bumps Version; Replace installs a month as read
// from the backend together with the backend's collection version.
type HolidaySet struct {
	mu            sync.RWMutex
	byDate        map[string]backend.Holiday
	loaded        map[calendar.Month]bool
	version       int64
	remoteVersion int64

	// added records every date that became a holiday, tagged with the
	// version that added it, so editors can force their grids lazily.
	added []addedDay
}

type addedDay struct {
	version int64
	date    date.Date
}

func NewHolidaySet() *HolidaySet {
	return &HolidaySet{
		byDate: make(map[string]backend.Holiday),
		loaded: make(map[calendar.Month]bool),
	}
}

func key(d date.Date) string {
	return calendar.Day(d.Year(), d.Month(), d.Day()).String()
}

// Has reports whether d is a company holiday.
func (s *HolidaySet) Has(d date.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byDate[key(d)]
	return ok
}

// Get returns the holiday on d.
func (s *HolidaySet) Get(d date.Date) (backend.Holiday, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byDate[key(d)]
	return h, ok
}

// Add records a holiday locally.
func (s *HolidaySet) Add(h backend.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDate[key(h.Date)] = h
	s.version++
	s.added = append(s.added, addedDay{version: s.version, date: h.Date})
}

// Remove drops the holiday on d locally and returns it.
func (s *HolidaySet) Remove(d date.Date) (backend.Holiday, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.byDate[key(d)]
	if ok {
		delete(s.byDate, key(d))
		s.version++
	}
	return h, ok
}

// Replace installs the holidays of month m as read from the backend,
// dropping any local entry of m the list does not contain.
func (s *HolidaySet) Replace(m calendar.Month, list backend.HolidayList) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]bool)
	for k, h := range s.byDate {
		if m.Contains(h.Date) {
			prev[k] = true
			delete(s.byDate, k)
		}
	}
	s.version++
	for _, h := range list.Holidays {
		if m.Contains(h.Date) {
			s.byDate[key(h.Date)] = h
			if !prev[key(h.Date)] {
				s.added = append(s.added, addedDay{version: s.version, date: h.Date})
			}
		}
	}
	s.loaded[m] = true
	s.remoteVersion = list.Version
}

// AddedSince returns the dates that became holidays after version v,
// together with the current version.
func (s *HolidaySet) AddedSince(v int64) ([]date.Date, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.added), func(i int) bool { return s.added[i].version > v })
	out := make([]date.Date, 0, len(s.added)-i)
	for _, a := range s.added[i:] {
		out = append(out, a.date)
	}
	return out, s.version
}

// Loaded reports whether month m has been read from the backend.
func (s *HolidaySet) Loaded(m calendar.Month) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[m]
}

// List returns the holidays of month m in date order.
func (s *HolidaySet) List(m calendar.Month) []backend.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []backend.Holiday
	for _, h := range s.byDate {
		if m.Contains(h.Date) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// Version is the local revision of the collection.
func (s *HolidaySet) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// RemoteVersion is the backend collection version of the last Replace.
func (s *HolidaySet) RemoteVersion() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteVersion
}
