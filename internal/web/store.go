package web

import (
	"sync"
	"time"

	"plancal/internal/agenda"
	"plancal/internal/model"
)

// SnapshotStore holds the latest snapshot and the calendar built from it.
// Refreshes replace both at once; readers never see a half-built calendar.
type SnapshotStore struct {
	opts agenda.Options

	mu        sync.RWMutex
	snap      model.Snapshot
	cal       *agenda.Calendar
	updatedAt time.Time
}

// NewSnapshotStore creates an empty store building calendars with opts.
func NewSnapshotStore(opts agenda.Options) *SnapshotStore {
	return &SnapshotStore{opts: opts}
}

// Set replaces the current snapshot.
func (s *SnapshotStore) Set(snap model.Snapshot) {
	cal := agenda.New(snap, s.opts)
	s.mu.Lock()
	s.snap = snap
	s.cal = cal
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Current returns the calendar and snapshot, or ok=false before the first
// successful load.
func (s *SnapshotStore) Current() (cal *agenda.Calendar, snap model.Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cal, s.snap, s.cal != nil
}

// UpdatedAt reports when the snapshot was last replaced.
func (s *SnapshotStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
