package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

type storedRecord struct {
	record    domain.CanonicalRecord
	createdAt time.Time
	updatedAt time.Time
}

// RecordStore is an in-memory implementation of driven.RecordStore,
// used by service tests. It mirrors the SQLite store's semantics:
// last-occurrence-wins deduplication inside a batch, creation time
// preserved across upserts, and the latest anchor ordered by creation
// time then identity.
type RecordStore struct {
	mu      sync.RWMutex
	tables  map[domain.Dataset]map[int64]storedRecord
	now     func() time.Time
	failing error
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		tables: make(map[domain.Dataset]map[int64]storedRecord),
		now:    time.Now,
	}
}

// SetNow overrides the clock. Useful for anchor ordering tests.
func (s *RecordStore) SetNow(now func() time.Time) { s.now = now }

// FailWith makes every subsequent write return err. Useful for
// checkpoint failure tests.
func (s *RecordStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

// UpsertBatch writes a batch, deduplicating by identity with the last
// occurrence winning.
func (s *RecordStore) UpsertBatch(_ context.Context, dataset domain.Dataset, records []domain.CanonicalRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing != nil {
		return 0, s.failing
	}

	table, ok := s.tables[dataset]
	if !ok {
		table = make(map[int64]storedRecord)
		s.tables[dataset] = table
	}

	deduped := make(map[int64]domain.CanonicalRecord, len(records))
	for _, r := range records {
		deduped[r.ID] = r
	}

	now := s.now()
	for id, r := range deduped {
		existing, ok := table[id]
		created := now
		if ok {
			created = existing.createdAt
		}
		table[id] = storedRecord{record: r, createdAt: created, updatedAt: now}
	}

	return len(deduped), nil
}

// LatestAnchor returns the most recently created record's identity.
func (s *RecordStore) LatestAnchor(_ context.Context, dataset domain.Dataset) (*domain.AnchorPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.tables[dataset]
	if len(table) == 0 {
		return nil, domain.ErrNotFound
	}

	var anchor *domain.AnchorPoint
	for id, sr := range table {
		if anchor == nil || sr.createdAt.After(anchor.CommittedAt) ||
			(sr.createdAt.Equal(anchor.CommittedAt) && id > anchor.ID) {
			anchor = &domain.AnchorPoint{ID: id, CommittedAt: sr.createdAt}
		}
	}
	return anchor, nil
}

// Count returns the number of stored rows for a dataset.
func (s *RecordStore) Count(_ context.Context, dataset domain.Dataset) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tables[dataset])), nil
}

// Close is a no-op for the in-memory store.
func (s *RecordStore) Close() error { return nil }

// Get returns a stored record by identity. Test helper.
func (s *RecordStore) Get(dataset domain.Dataset, id int64) (*domain.CanonicalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.tables[dataset][id]
	if !ok {
		return nil, false
	}
	r := sr.record
	return &r, true
}
