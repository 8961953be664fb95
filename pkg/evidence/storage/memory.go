package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"expandev/atena/pkg/evidence"
)

// MemoryStorage implements the Storage interface with an in-memory map.
// Intended for tests; records do not survive the process.
type MemoryStorage struct {
	records map[string]*evidence.TurnRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.TurnRecord),
	}
}

// Store persists a turn record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves records matching the query, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*evidence.TurnRecord
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedTime.After(results[j].RecordedTime)
	})

	return paginate(results, query), nil
}

// Count returns the number of records matching the query.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan removes records recorded before the cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.RecordedTime.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources (a no-op for memory storage).
func (s *MemoryStorage) Close() error {
	return nil
}

// matchesQuery checks a record against all query filters.
func matchesQuery(record *evidence.TurnRecord, query *evidence.Query) bool {
	if query == nil {
		return true
	}

	if query.ConversationID != "" && record.ConversationID != query.ConversationID {
		return false
	}

	if query.RuleID != "" {
		found := false
		for _, id := range record.GoverningSet {
			if id == query.RuleID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if query.StartTime != nil && record.RecordedTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RecordedTime.After(*query.EndTime) {
		return false
	}

	if query.HasError != nil {
		hasError := record.Error != ""
		if hasError != *query.HasError {
			return false
		}
	}

	return true
}

// paginate applies offset/limit to sorted results.
func paginate(results []*evidence.TurnRecord, query *evidence.Query) []*evidence.TurnRecord {
	if query == nil {
		return results
	}

	start := query.Offset
	if start > len(results) {
		return []*evidence.TurnRecord{}
	}

	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end]
}
