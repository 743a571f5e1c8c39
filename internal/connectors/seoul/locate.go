package seoul

import (
	"context"
	"fmt"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/logger"
	"github.com/hangang-labs/aptsync/internal/normalize"
)

// Locator scans the live dataset for the page holding a known identity.
// The upstream reshuffles rows across pages between runs, so the only
// way to find where a committed record now lives is to pull pages and
// recompute identities until one matches.
type Locator struct{}

var _ driven.AnchorLocator = (*Locator)(nil)

// NewLocator returns a page locator.
func NewLocator() *Locator { return &Locator{} }

// LocatePage returns the 1-based page currently holding target.
// maxScanPages bounds the number of pages pulled; zero means scan the
// whole dataset. Exhausting the budget returns an error wrapping
// domain.ErrAnchorNotFound.
func (l *Locator) LocatePage(ctx context.Context, fetcher driven.PageFetcher, target int64, strategy domain.ScanStrategy, maxScanPages int) (int, error) {
	page, _, err := l.locate(ctx, fetcher, target, strategy, maxScanPages)
	return page, err
}

// LocateRow returns the page and the zero-based row index within it.
func (l *Locator) LocateRow(ctx context.Context, fetcher driven.PageFetcher, target int64, strategy domain.ScanStrategy, maxScanPages int) (int, int, error) {
	return l.locate(ctx, fetcher, target, strategy, maxScanPages)
}

func (l *Locator) locate(ctx context.Context, fetcher driven.PageFetcher, target int64, strategy domain.ScanStrategy, maxScanPages int) (int, int, error) {
	lastPage, err := fetcher.LastPage(ctx)
	if err != nil {
		return 0, 0, err
	}
	if lastPage == 0 {
		return 0, 0, domain.ErrEmptyDataset
	}

	pages := scanOrder(strategy, lastPage, maxScanPages)

	scanned := 0
	for _, pageNo := range pages {
		rows, err := fetcher.FetchPage(ctx, pageNo)
		if err != nil {
			return 0, 0, fmt.Errorf("anchor scan page %d: %w", pageNo, err)
		}
		scanned++
		for i, raw := range rows {
			if normalize.Identity(raw) == target {
				logger.Debug("anchor %d found on page %d (row %d) after scanning %d pages", target, pageNo, i, scanned)
				return pageNo, i, nil
			}
		}
	}

	return 0, 0, fmt.Errorf("%w: id %d not on any of %d scanned pages", domain.ErrAnchorNotFound, target, scanned)
}

// scanOrder lists the pages to visit. Forward scans start at page 1,
// where the upstream surfaces its freshest rows; reverse scans start at
// the tail. Auto visits the forward budget first and then the reverse
// budget, skipping pages already seen.
func scanOrder(strategy domain.ScanStrategy, lastPage, maxScanPages int) []int {
	budget := lastPage
	if maxScanPages > 0 && maxScanPages < budget {
		budget = maxScanPages
	}

	forward := func() []int {
		pages := make([]int, 0, budget)
		for p := 1; p <= budget; p++ {
			pages = append(pages, p)
		}
		return pages
	}
	reverse := func() []int {
		pages := make([]int, 0, budget)
		for p := lastPage; p > lastPage-budget; p-- {
			pages = append(pages, p)
		}
		return pages
	}

	switch strategy {
	case domain.ScanReverse:
		return reverse()
	case domain.ScanAuto:
		seen := make(map[int]bool, budget)
		pages := forward()
		for _, p := range pages {
			seen[p] = true
		}
		for _, p := range reverse() {
			if !seen[p] {
				pages = append(pages, p)
			}
		}
		return pages
	default:
		return forward()
	}
}
