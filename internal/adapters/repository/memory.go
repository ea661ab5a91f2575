package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/drivefit/riskd/internal/domain/model"
)

// MemoryStore keeps per-user records in timestamp-sorted slices. It is the
// default backend for development and tests; concurrent use is safe.
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string][]model.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(_ context.Context) *MemoryStore {
	return &MemoryStore{
		byUser: make(map[string][]model.Record),
	}
}

// Put inserts rec into the user's slice, keeping ascending timestamp order.
// Equal timestamps append after existing ones, so arrival order breaks ties.
func (s *MemoryStore) Put(_ context.Context, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.byUser[rec.UserID]
	i := sort.Search(len(records), func(i int) bool {
		return records[i].Timestamp > rec.Timestamp
	})
	records = append(records, model.Record{})
	copy(records[i+1:], records[i:])
	records[i] = rec
	s.byUser[rec.UserID] = records
	return nil
}

// Recent returns up to limit records for userID, newest-first.
func (s *MemoryStore) Recent(_ context.Context, userID string, limit int) ([]model.Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[userID]
	if len(records) == 0 {
		return []model.Record{}, nil
	}

	n := limit
	if n > len(records) {
		n = len(records)
	}
	out := make([]model.Record, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// Count returns the total number of records across all users.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, records := range s.byUser {
		total += len(records)
	}
	return total
}
