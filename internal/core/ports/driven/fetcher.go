package driven

import (
	"context"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// PageFetcher pulls pages of one upstream dataset. Implementations own
// retry, backoff, throttling and format fallbacks; callers see either a
// page of rows or a classified error.
//
// Pages are 1-based fixed-size index windows. The upstream makes no
// promise about which row occupies which page across calls, so page
// numbers are never treated as identity.
type PageFetcher interface {
	// FetchPage returns the rows of one page. An empty slice is a
	// sparsely populated page, not end-of-dataset.
	FetchPage(ctx context.Context, pageNo int) ([]domain.RawRecord, error)

	// TotalCount probes the dataset's advertised row count with a
	// minimal call. Zero or negative means the dataset is empty.
	TotalCount(ctx context.Context) (int, error)

	// LastPage derives the final page number from TotalCount.
	// Returns 0 for an empty dataset.
	LastPage(ctx context.Context) (int, error)

	// PageSize returns the configured window size.
	PageSize() int
}

// FetcherFactory creates a PageFetcher bound to one run's settings.
type FetcherFactory func(settings domain.IngestSettings) (PageFetcher, error)
