package driven

import (
	"context"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// AnchorLocator finds the page currently holding a previously committed
// identity. Implementations scan the live dataset page by page in the
// requested direction, computing identities only, and stop at the first
// page whose row set contains the target.
type AnchorLocator interface {
	// LocatePage returns the 1-based page number containing target.
	// Exhausting the scan budget returns an error wrapping
	// domain.ErrAnchorNotFound; callers must treat that as "cannot
	// safely resume", never as "dataset is empty".
	LocatePage(ctx context.Context, fetcher PageFetcher, target int64, strategy domain.ScanStrategy, maxScanPages int) (int, error)
}
