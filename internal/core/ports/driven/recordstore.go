package driven

import (
	"context"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// RecordStore persists canonical records keyed by identity. Independent
// datasets land in disjoint tables, so concurrent runs over different
// datasets never contend beyond the shared connection.
type RecordStore interface {
	// UpsertBatch writes a batch atomically. Within the batch, records
	// sharing an identity are deduplicated keeping the LAST occurrence.
	// Conflicting rows are overwritten except for their original
	// creation timestamp; the update timestamp is refreshed. Returns
	// the number of rows written after deduplication.
	//
	// Either the whole batch commits or none of it does.
	UpsertBatch(ctx context.Context, dataset domain.Dataset, records []domain.CanonicalRecord) (int, error)

	// LatestAnchor returns the most recently committed record's
	// identity and commit time for a dataset, or domain.ErrNotFound
	// when the dataset has no rows yet.
	LatestAnchor(ctx context.Context, dataset domain.Dataset) (*domain.AnchorPoint, error)

	// Count returns the number of stored rows for a dataset.
	Count(ctx context.Context, dataset domain.Dataset) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
