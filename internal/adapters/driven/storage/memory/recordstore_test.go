package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

func rec(id int64, name string) domain.CanonicalRecord {
	return domain.CanonicalRecord{ID: id, Dataset: domain.DatasetSale, BuildingName: name}
}

func TestUpsertBatchDeduplicatesLastWins(t *testing.T) {
	s := NewRecordStore()

	n, err := s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{
		rec(1, "first"),
		rec(2, "other"),
		rec(1, "second"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, ok := s.Get(domain.DatasetSale, 1)
	require.True(t, ok)
	assert.Equal(t, "second", got.BuildingName)
}

func TestUpsertBatchPreservesCreation(t *testing.T) {
	s := NewRecordStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetNow(func() time.Time { return base })

	_, err := s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(1, "v1")})
	require.NoError(t, err)

	s.SetNow(func() time.Time { return base.Add(time.Hour) })
	_, err = s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(1, "v2")})
	require.NoError(t, err)

	anchor, err := s.LatestAnchor(context.Background(), domain.DatasetSale)
	require.NoError(t, err)
	// Re-upserting must not make an old record look fresh.
	assert.Equal(t, base, anchor.CommittedAt)
}

func TestLatestAnchorOrdering(t *testing.T) {
	s := NewRecordStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.SetNow(func() time.Time { return base })
	_, err := s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(5, "a"), rec(9, "b")})
	require.NoError(t, err)

	s.SetNow(func() time.Time { return base.Add(time.Minute) })
	_, err = s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(3, "c")})
	require.NoError(t, err)

	anchor, err := s.LatestAnchor(context.Background(), domain.DatasetSale)
	require.NoError(t, err)
	assert.Equal(t, int64(3), anchor.ID)
}

func TestLatestAnchorEmpty(t *testing.T) {
	s := NewRecordStore()
	_, err := s.LatestAnchor(context.Background(), domain.DatasetRent)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDatasetsAreDisjoint(t *testing.T) {
	s := NewRecordStore()

	_, err := s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(1, "sale")})
	require.NoError(t, err)

	n, err := s.Count(context.Background(), domain.DatasetRent)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailWith(t *testing.T) {
	s := NewRecordStore()
	boom := errors.New("disk on fire")
	s.FailWith(boom)

	_, err := s.UpsertBatch(context.Background(), domain.DatasetSale, []domain.CanonicalRecord{rec(1, "x")})
	assert.ErrorIs(t, err, boom)
}
