// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds per-session preference snapshots and query
// history. The store is purely in-memory and lives for the process
// lifetime; nothing is ever deleted automatically.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// ErrHistoryOrder is returned when an appended entry's timestamp would
// precede the session's last entry. Out-of-order appends are a caller
// error, not something the store corrects.
var ErrHistoryOrder = errors.New("session: history timestamp precedes last entry")

// Store is a process-wide, in-memory session store. Safe for concurrent
// use; appends to the same session are serialized, sessions with
// different identifiers do not interfere beyond map access.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*types.SessionRecord
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*types.SessionRecord),
		now:      time.Now,
	}
}

// NewID returns a fresh system-generated session identifier.
func NewID() string {
	return "session-" + uuid.NewString()
}

// GetOrCreate returns a snapshot of the session with the given
// identifier, creating it with an empty history and the default
// interest profile if absent. Lookup and creation are one atomic
// operation.
func (s *Store) GetOrCreate(id string) types.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecord(s.getOrCreateLocked(id))
}

// UpdateProfile replaces the stored profile snapshot for the session,
// creating the session first if it does not exist. History is untouched.
func (s *Store) UpdateProfile(id string, profile types.InterestProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(id)
	rec.Profile = copyProfile(profile)
}

// AppendHistory adds one query-history entry to the session. The
// session must exist, and the entry's timestamp must be monotonically
// non-decreasing relative to the session's last entry. Entries are
// never removed.
func (s *Store) AppendHistory(id string, entry types.QueryHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	if n := len(rec.History); n > 0 && entry.Timestamp.Before(rec.History[n-1].Timestamp) {
		return fmt.Errorf("%w: %s < %s", ErrHistoryOrder,
			entry.Timestamp.Format(time.RFC3339Nano),
			rec.History[n-1].Timestamp.Format(time.RFC3339Nano))
	}
	rec.History = append(rec.History, entry)
	return nil
}

// Get returns a snapshot of the session and whether it exists.
func (s *Store) Get(id string) (types.SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return types.SessionRecord{}, false
	}
	return copyRecord(rec), true
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(id string) *types.SessionRecord {
	if rec, ok := s.sessions[id]; ok {
		return rec
	}
	rec := &types.SessionRecord{
		ID:        id,
		CreatedAt: s.now(),
		Profile:   types.DefaultProfile(),
	}
	s.sessions[id] = rec
	return rec
}

// copyRecord returns a deep copy so callers cannot mutate stored state.
func copyRecord(rec *types.SessionRecord) types.SessionRecord {
	out := *rec
	out.Profile = copyProfile(rec.Profile)
	out.History = append([]types.QueryHistoryEntry(nil), rec.History...)
	return out
}

func copyProfile(p types.InterestProfile) types.InterestProfile {
	p.Keywords = append([]string(nil), p.Keywords...)
	p.Categories = append([]string(nil), p.Categories...)
	return p
}
