// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

func TestGetOrCreate_NewSessionHasDefaults(t *testing.T) {
	s := NewStore()

	rec := s.GetOrCreate("alice")
	assert.Equal(t, "alice", rec.ID)
	assert.Equal(t, types.DefaultProfile(), rec.Profile)
	assert.Empty(t, rec.History)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGetOrCreate_ReturnsExisting(t *testing.T) {
	s := NewStore()

	first := s.GetOrCreate("alice")
	s.UpdateProfile("alice", types.InterestProfile{Keywords: []string{"topological"}})

	second := s.GetOrCreate("alice")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, []string{"topological"}, second.Profile.Keywords)
	assert.Equal(t, 1, s.Len())
}

func TestUpdateProfile_DoesNotTouchHistory(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("alice")
	require.NoError(t, s.AppendHistory("alice", types.QueryHistoryEntry{
		Query:     "surface codes",
		Timestamp: time.Now(),
	}))

	s.UpdateProfile("alice", types.InterestProfile{Keywords: []string{"qec"}})

	rec, ok := s.Get("alice")
	require.True(t, ok)
	assert.Len(t, rec.History, 1)
	assert.Equal(t, []string{"qec"}, rec.Profile.Keywords)
}

func TestAppendHistory_UnknownSession(t *testing.T) {
	s := NewStore()
	err := s.AppendHistory("ghost", types.QueryHistoryEntry{Timestamp: time.Now()})
	assert.Error(t, err)
}

func TestAppendHistory_MonotonicTimestamps(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("alice")

	base := time.Now()
	require.NoError(t, s.AppendHistory("alice", types.QueryHistoryEntry{Timestamp: base}))

	// Equal timestamps are allowed (non-decreasing).
	require.NoError(t, s.AppendHistory("alice", types.QueryHistoryEntry{Timestamp: base}))

	// Going backwards is a caller error.
	err := s.AppendHistory("alice", types.QueryHistoryEntry{Timestamp: base.Add(-time.Second)})
	assert.ErrorIs(t, err, ErrHistoryOrder)

	rec, _ := s.Get("alice")
	assert.Len(t, rec.History, 2)
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.UpdateProfile("alice", types.InterestProfile{Keywords: []string{"qec"}})

	rec := s.GetOrCreate("alice")
	rec.Profile.Keywords[0] = "mutated"
	rec.History = append(rec.History, types.QueryHistoryEntry{Query: "sneaky"})

	fresh, _ := s.Get("alice")
	assert.Equal(t, []string{"qec"}, fresh.Profile.Keywords)
	assert.Empty(t, fresh.History)
}

func TestConcurrentAppendsSameSession(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("shared")

	const n = 50
	ts := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Same timestamp for all appends: non-decreasing is satisfied
			// regardless of interleaving.
			err := s.AppendHistory("shared", types.QueryHistoryEntry{
				Query:     fmt.Sprintf("query-%d", i),
				Timestamp: ts,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rec, _ := s.Get("shared")
	assert.Len(t, rec.History, n)
}

func TestConcurrentSessionsDoNotInterfere(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			s.GetOrCreate(id)
			err := s.AppendHistory(id, types.QueryHistoryEntry{Timestamp: time.Now()})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
	for i := 0; i < 20; i++ {
		rec, ok := s.Get(fmt.Sprintf("session-%d", i))
		require.True(t, ok)
		assert.Len(t, rec.History, 1)
	}
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "session-")
}
