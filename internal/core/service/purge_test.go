package service

import (
	"context"
	"errors"
	"fmt"
	"pbpbot/internal/core/domain"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// memoryStore keeps channel histories newest first.
type memoryStore struct {
	mu       sync.Mutex
	channels map[string][]domain.Message

	bulkErr    error
	singleErrs map[string]error
	fetchErr   error

	fetches   int
	bulkCalls [][]string
	singles   []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		channels:   make(map[string][]domain.Message),
		singleErrs: make(map[string]error),
	}
}

// add appends a message older than everything already in the channel.
func (s *memoryStore) add(channelID, authorID string, age time.Duration) string {
	id := fmt.Sprintf("%s-%d", channelID, len(s.channels[channelID]))
	s.channels[channelID] = append(s.channels[channelID], domain.Message{
		ID:        id,
		ChannelID: channelID,
		AuthorID:  authorID,
		CreatedAt: testNow.Add(-age),
	})
	return id
}

func (s *memoryStore) FetchMessages(_ context.Context, channelID string, limit int, before string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	history := s.channels[channelID]
	start := 0
	if before != "" {
		idx := slices.IndexFunc(history, func(m domain.Message) bool { return m.ID == before })
		if idx < 0 {
			return nil, nil
		}
		start = idx + 1
	}

	end := min(start+limit, len(history))
	return slices.Clone(history[start:end]), nil
}

func (s *memoryStore) DeleteBulk(_ context.Context, channelID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkCalls = append(s.bulkCalls, slices.Clone(ids))
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.remove(channelID, ids...)
	return nil
}

func (s *memoryStore) DeleteOne(_ context.Context, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.singles = append(s.singles, messageID)
	if err := s.singleErrs[messageID]; err != nil {
		return err
	}
	s.remove(channelID, messageID)
	return nil
}

// remove leaves deleted messages as tombstones so page cursors stay valid.
func (s *memoryStore) remove(channelID string, ids ...string) {
	for i, m := range s.channels[channelID] {
		if slices.Contains(ids, m.ID) {
			s.channels[channelID][i].AuthorID = "deleted"
		}
	}
}

func newTestPurger(store *memoryStore) *Purger {
	p := NewPurger(store)
	p.PageDelay = 0
	p.SingleDelay = 0
	p.now = func() time.Time { return testNow }
	return p
}

func TestPurger_BoundaryPolicy(t *testing.T) {
	tests := []struct {
		name          string
		age           time.Duration
		oldAtBoundary bool
		wantOld       bool
	}{
		{name: "fresh", age: time.Hour, oldAtBoundary: true, wantOld: false},
		{name: "just inside", age: BulkAgeLimit - time.Millisecond, oldAtBoundary: true, wantOld: false},
		{name: "exactly at limit is old", age: BulkAgeLimit, oldAtBoundary: true, wantOld: true},
		{name: "exactly at limit is recent when configured", age: BulkAgeLimit, oldAtBoundary: false, wantOld: false},
		{name: "past limit", age: BulkAgeLimit + time.Millisecond, oldAtBoundary: false, wantOld: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPurger(newMemoryStore())
			p.OldAtBoundary = tc.oldAtBoundary

			assert.Equal(t, tc.wantOld, p.IsOld(tc.age))
		})
	}
}

func TestPurger_SplitsRecentAndOld(t *testing.T) {
	store := newMemoryStore()
	r1 := store.add("c", "u", time.Minute)
	store.add("c", "other", 2*time.Minute)
	r2 := store.add("c", "u", time.Hour)
	o1 := store.add("c", "u", BulkAgeLimit)
	o2 := store.add("c", "u", 20*24*time.Hour)

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 10)

	require.NoError(t, err)
	assert.Equal(t, PurgeResult{Deleted: 4}, got)
	assert.Equal(t, [][]string{{r1, r2}}, store.bulkCalls)
	assert.Equal(t, []string{o1, o2}, store.singles)
	assert.Equal(t, 1, store.fetches, "short page ends the scan")
}

func TestPurger_SingleRecentMessageSkipsBulk(t *testing.T) {
	store := newMemoryStore()
	id := store.add("c", "u", time.Minute)

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 5)

	require.NoError(t, err)
	assert.Equal(t, 1, got.Deleted)
	assert.Empty(t, store.bulkCalls)
	assert.Equal(t, []string{id}, store.singles)
}

func TestPurger_BulkFailureFallsBackToSingles(t *testing.T) {
	store := newMemoryStore()
	store.bulkErr = errors.New("messages too old")
	a := store.add("c", "u", time.Minute)
	b := store.add("c", "u", time.Minute)
	store.singleErrs[b] = errors.New("unknown message")

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 5)

	require.NoError(t, err)
	assert.Equal(t, PurgeResult{Deleted: 1, Failed: 1}, got)
	assert.Len(t, store.bulkCalls, 1)
	assert.Equal(t, []string{a, b}, store.singles)
}

func TestPurger_PagesUntilCountMet(t *testing.T) {
	store := newMemoryStore()
	for i := 0; i < 250; i++ {
		author := "other"
		if i%2 == 0 {
			author = "u"
		}
		store.add("c", author, time.Duration(i+1)*time.Minute)
	}

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 60)

	require.NoError(t, err)
	assert.Equal(t, 60, got.Deleted)
	assert.Equal(t, 2, store.fetches)
	require.Len(t, store.bulkCalls, 2)
	assert.Len(t, store.bulkCalls[0], 50)
	assert.Len(t, store.bulkCalls[1], 10)
}

func TestPurger_ExhaustedChannelReturnsFewer(t *testing.T) {
	store := newMemoryStore()
	for i := 0; i < 200; i++ {
		store.add("c", "u", time.Duration(i+1)*time.Minute)
	}

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 500)

	require.NoError(t, err)
	assert.Equal(t, 200, got.Deleted)
	assert.Equal(t, 3, store.fetches, "two full pages then an empty one")
}

func TestPurger_FetchError(t *testing.T) {
	store := newMemoryStore()
	store.fetchErr = errors.New("missing access")

	got, err := newTestPurger(store).Purge(t.Context(), "c", "u", 5)

	require.ErrorIs(t, err, store.fetchErr)
	assert.Zero(t, got.Deleted)
}

func TestPurger_SingleDeletesArePaced(t *testing.T) {
	store := newMemoryStore()
	store.add("c", "u", BulkAgeLimit+time.Hour)
	store.add("c", "u", BulkAgeLimit+2*time.Hour)
	store.add("c", "u", BulkAgeLimit+3*time.Hour)

	p := newTestPurger(store)
	p.SingleDelay = 20 * time.Millisecond

	start := time.Now()
	got, err := p.Purge(t.Context(), "c", "u", 3)

	require.NoError(t, err)
	assert.Equal(t, 3, got.Deleted)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
