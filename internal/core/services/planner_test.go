package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangang-labs/aptsync/internal/adapters/driven/storage/memory"
	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
)

// stubLocator scripts the anchor search outcome.
type stubLocator struct {
	page int
	err  error

	gotTarget   int64
	gotStrategy domain.ScanStrategy
	gotBudget   int
}

func (l *stubLocator) LocatePage(_ context.Context, _ driven.PageFetcher, target int64, strategy domain.ScanStrategy, maxScanPages int) (int, error) {
	l.gotTarget = target
	l.gotStrategy = strategy
	l.gotBudget = maxScanPages
	return l.page, l.err
}

func plannerSettings() domain.IngestSettings {
	s := domain.DefaultIngestSettings(domain.DatasetSale)
	s.APIKey = "k"
	s.PageSize = 1000
	return s
}

func seedAnchor(t *testing.T, store *memory.RecordStore, id int64) {
	t.Helper()
	_, err := store.UpsertBatch(context.Background(), domain.DatasetSale,
		[]domain.CanonicalRecord{{ID: id, Dataset: domain.DatasetSale}})
	require.NoError(t, err)
}

func TestPlanEmptyDataset(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 0

	plan, err := NewPlanner(&stubLocator{}).Plan(context.Background(), f, memory.NewRecordStore(), plannerSettings())
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.Equal(t, "dataset is empty", plan.Reason)
}

func TestPlanResumeOverrideBeatsEverything(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 4200
	store := memory.NewRecordStore()
	seedAnchor(t, store, 77)

	s := plannerSettings()
	s.ResumePage = 3
	s.Mode = domain.ModeFull // the override still wins

	loc := &stubLocator{}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, store, s)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.StartPage)
	assert.Equal(t, 5, plan.EndPage)
	assert.False(t, plan.AnchorFound)
	assert.Zero(t, loc.gotTarget, "no anchor search expected")
}

func TestPlanResumePastTail(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 1500

	s := plannerSettings()
	s.ResumePage = 9

	plan, err := NewPlanner(&stubLocator{}).Plan(context.Background(), f, memory.NewRecordStore(), s)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestPlanFullMode(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 2500

	s := plannerSettings()
	s.Mode = domain.ModeFull

	plan, err := NewPlanner(&stubLocator{}).Plan(context.Background(), f, memory.NewRecordStore(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.StartPage)
	assert.Equal(t, 3, plan.EndPage)
}

func TestPlanFirstRunUsesHeadWindow(t *testing.T) {
	// An empty store in incremental mode must not trigger an implicit
	// full load of a multi-thousand-page feed; only the head window is
	// pulled until an anchor exists.
	f := newStubFetcher(1000)
	f.total = 25000 // 25 pages

	loc := &stubLocator{}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, memory.NewRecordStore(), plannerSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, plan.StartPage)
	assert.Equal(t, 3, plan.EndPage)
	assert.False(t, plan.AnchorFound)
	assert.Contains(t, plan.Reason, "no anchor")
	assert.Zero(t, loc.gotTarget, "no anchor search without a stored identity")
}

func TestPlanFirstRunHeadWindowClampedToTail(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 1500 // 2 pages, head window of 3 must clamp

	plan, err := NewPlanner(&stubLocator{}).Plan(context.Background(), f, memory.NewRecordStore(), plannerSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.EndPage)
}

func TestPlanStoredAnchorBoundsRange(t *testing.T) {
	// 2500 rows at 1000 per page gives 3 pages; the anchor sits on
	// page 2, so the run pulls pages 1 and 2 with page 2 re-pulled
	// whole.
	f := newStubFetcher(1000)
	f.total = 2500
	store := memory.NewRecordStore()
	seedAnchor(t, store, 1234)

	loc := &stubLocator{page: 2}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, store, plannerSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, plan.StartPage)
	assert.Equal(t, 2, plan.EndPage)
	assert.Equal(t, 2, plan.AnchorPage)
	assert.True(t, plan.AnchorFound)
	assert.Equal(t, int64(1234), loc.gotTarget)
	assert.Equal(t, domain.ScanForward, loc.gotStrategy)
	assert.Equal(t, 50, loc.gotBudget)
}

func TestPlanForcedAnchorSkipsStore(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 2500
	store := memory.NewRecordStore()
	seedAnchor(t, store, 1234)

	s := plannerSettings()
	s.ForcedAnchorID = 999

	loc := &stubLocator{page: 1}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, store, s)
	require.NoError(t, err)

	assert.Equal(t, int64(999), loc.gotTarget)
	assert.Equal(t, 1, plan.EndPage)
	assert.Contains(t, plan.Reason, "forced")
}

func TestPlanAnchorNotFoundHeadWindow(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 60000
	store := memory.NewRecordStore()
	seedAnchor(t, store, 1234)

	loc := &stubLocator{err: fmt.Errorf("scan: %w", domain.ErrAnchorNotFound)}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, store, plannerSettings())
	require.NoError(t, err, "a lost anchor degrades, it does not fail the run")

	assert.Equal(t, 1, plan.StartPage)
	assert.Equal(t, 3, plan.EndPage)
	assert.False(t, plan.AnchorFound)
	assert.Contains(t, plan.Reason, "head window")
}

func TestPlanHeadWindowClampedToTail(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 1500 // 2 pages, head window of 3 must clamp
	store := memory.NewRecordStore()
	seedAnchor(t, store, 1234)

	loc := &stubLocator{err: domain.ErrAnchorNotFound}
	plan, err := NewPlanner(loc).Plan(context.Background(), f, store, plannerSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.EndPage)
}

func TestPlanProbeFailurePropagates(t *testing.T) {
	f := newStubFetcher(1000)
	boom := errors.New("upstream down")
	f.probeErr = boom

	_, err := NewPlanner(&stubLocator{}).Plan(context.Background(), f, memory.NewRecordStore(), plannerSettings())
	assert.ErrorIs(t, err, boom)
}

func TestPlanLocatorHardFailurePropagates(t *testing.T) {
	f := newStubFetcher(1000)
	f.total = 2500
	store := memory.NewRecordStore()
	seedAnchor(t, store, 1234)

	boom := errors.New("scan aborted")
	loc := &stubLocator{err: boom}
	_, err := NewPlanner(loc).Plan(context.Background(), f, store, plannerSettings())
	assert.ErrorIs(t, err, boom)
}
