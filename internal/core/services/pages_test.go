package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// stubFetcher serves scripted pages for planner and iterator tests.
type stubFetcher struct {
	pages    map[int][]domain.RawRecord
	total    int
	size     int
	pageErrs map[int]error
	probeErr error
	fetched  []int
}

func newStubFetcher(size int) *stubFetcher {
	return &stubFetcher{
		pages:    make(map[int][]domain.RawRecord),
		pageErrs: make(map[int]error),
		size:     size,
	}
}

func (f *stubFetcher) FetchPage(_ context.Context, pageNo int) ([]domain.RawRecord, error) {
	f.fetched = append(f.fetched, pageNo)
	if err := f.pageErrs[pageNo]; err != nil {
		return nil, err
	}
	return f.pages[pageNo], nil
}

func (f *stubFetcher) TotalCount(context.Context) (int, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.total, nil
}

func (f *stubFetcher) LastPage(ctx context.Context) (int, error) {
	total, err := f.TotalCount(ctx)
	if err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, nil
	}
	return (total + f.size - 1) / f.size, nil
}

func (f *stubFetcher) PageSize() int { return f.size }

func (f *stubFetcher) fill(pageCount, rowsPerPage int) {
	n := 0
	for p := 1; p <= pageCount; p++ {
		for i := 0; i < rowsPerPage; i++ {
			n++
			f.pages[p] = append(f.pages[p], domain.RawRecord{"CTRT_DAY": "20240101", "SEQ": fmt.Sprintf("%d", n)})
		}
	}
	f.total = n
}

func TestPageIteratorWalksRange(t *testing.T) {
	f := newStubFetcher(2)
	f.fill(5, 2)

	it := NewPageIterator(f, domain.IngestionPlan{StartPage: 2, EndPage: 4})

	var pages []int
	for it.Next(context.Background()) {
		pages = append(pages, it.Page())
		assert.Len(t, it.Rows(), 2)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{2, 3, 4}, pages)
}

func TestPageIteratorEmptyPlan(t *testing.T) {
	f := newStubFetcher(2)

	it := NewPageIterator(f, domain.IngestionPlan{})
	assert.False(t, it.Next(context.Background()))
	assert.NoError(t, it.Err())
	assert.Empty(t, f.fetched)
}

func TestPageIteratorStopsOnError(t *testing.T) {
	f := newStubFetcher(2)
	f.fill(3, 2)
	boom := errors.New("connection reset")
	f.pageErrs[2] = boom

	it := NewPageIterator(f, domain.IngestionPlan{StartPage: 1, EndPage: 3})

	assert.True(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	assert.ErrorIs(t, it.Err(), boom)
	// The walk does not continue past the failure.
	assert.False(t, it.Next(context.Background()))
	assert.Equal(t, []int{1, 2}, f.fetched)
}

func TestPageIteratorEmptyPageIsNotEnd(t *testing.T) {
	f := newStubFetcher(2)
	f.pages[1] = []domain.RawRecord{{"CTRT_DAY": "20240101"}}
	f.pages[2] = nil
	f.pages[3] = []domain.RawRecord{{"CTRT_DAY": "20240102"}}
	f.total = 100

	it := NewPageIterator(f, domain.IngestionPlan{StartPage: 1, EndPage: 3})

	var counts []int
	for it.Next(context.Background()) {
		counts = append(counts, len(it.Rows()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{1, 0, 1}, counts)
}
