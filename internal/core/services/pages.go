package services

import (
	"context"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
)

// PageIterator walks a plan's page range, fetching one page per Next
// call. The iterator is explicit about where it stands: callers see the
// current page number and rows, and a fetch failure parks the error on
// Err and ends the walk.
//
//	it := NewPageIterator(fetcher, plan)
//	for it.Next(ctx) {
//	    process(it.Page(), it.Rows())
//	}
//	if err := it.Err(); err != nil { ... }
type PageIterator struct {
	fetcher driven.PageFetcher
	next    int
	end     int
	pageNo  int
	rows    []domain.RawRecord
	err     error
}

// NewPageIterator creates an iterator over the plan's page range.
// An empty plan yields an iterator that is immediately exhausted.
func NewPageIterator(fetcher driven.PageFetcher, plan domain.IngestionPlan) *PageIterator {
	it := &PageIterator{fetcher: fetcher, next: plan.StartPage, end: plan.EndPage}
	if plan.IsEmpty() {
		it.next = 1
		it.end = 0
	}
	return it
}

// Next fetches the next page. It returns false when the range is
// exhausted or a fetch failed; distinguish the two with Err.
func (it *PageIterator) Next(ctx context.Context) bool {
	if it.err != nil || it.next > it.end {
		return false
	}

	rows, err := it.fetcher.FetchPage(ctx, it.next)
	if err != nil {
		it.err = err
		return false
	}

	it.pageNo = it.next
	it.next++
	it.rows = rows
	return true
}

// Page returns the page number of the most recent successful fetch.
func (it *PageIterator) Page() int { return it.pageNo }

// Rows returns the rows of the most recent successful fetch. The slice
// may be empty: sparsely populated pages are normal near the tail.
func (it *PageIterator) Rows() []domain.RawRecord { return it.rows }

// Err returns the fetch error that ended the walk, if any.
func (it *PageIterator) Err() error { return it.err }
