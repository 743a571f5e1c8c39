package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/core/ports/driving"
	"github.com/hangang-labs/aptsync/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// IngestOrchestrator runs the plan-fetch-transform-upsert loop.
type IngestOrchestrator struct {
	settings     driven.SettingsProvider
	fetchers     driven.FetcherFactory
	transformers driven.TransformerFactory
	store        driven.RecordStore
	planner      *Planner

	mu      sync.Mutex
	running map[domain.Dataset]bool
}

// NewIngestOrchestrator creates an orchestrator. All collaborators are
// required.
func NewIngestOrchestrator(
	settings driven.SettingsProvider,
	fetchers driven.FetcherFactory,
	transformers driven.TransformerFactory,
	store driven.RecordStore,
	planner *Planner,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		settings:     settings,
		fetchers:     fetchers,
		transformers: transformers,
		store:        store,
		planner:      planner,
		running:      make(map[domain.Dataset]bool),
	}
}

// Ingest runs one dataset to completion. Two concurrent runs of the
// same dataset would race on the anchor, so the second one is refused.
func (o *IngestOrchestrator) Ingest(ctx context.Context, dataset domain.Dataset) (*driving.IngestReport, error) {
	if !dataset.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDataset, dataset)
	}

	if err := o.acquire(dataset); err != nil {
		return nil, err
	}
	defer o.release(dataset)

	settings, err := o.settings.SettingsFor(dataset)
	if err != nil {
		return nil, fmt.Errorf("resolve settings for %s: %w", dataset, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	rc := domain.RunContext{
		RunID:     uuid.NewString(),
		Dataset:   dataset,
		Settings:  settings,
		StartedAt: time.Now().UTC(),
	}

	return o.run(ctx, rc)
}

// IngestAll runs every configured dataset concurrently. Each dataset
// owns its table and its upstream service, so the runs are independent;
// one dataset failing does not stop the others, and the joined error
// reports every failure.
func (o *IngestOrchestrator) IngestAll(ctx context.Context) ([]*driving.IngestReport, error) {
	datasets := o.settings.Datasets()
	if len(datasets) == 0 {
		datasets = domain.AllDatasets()
	}

	var (
		mu      sync.Mutex
		reports []*driving.IngestReport
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range datasets {
		g.Go(func() error {
			report, err := o.Ingest(gctx, d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", d, err))
				return nil
			}
			reports = append(reports, report)
			return nil
		})
	}
	_ = g.Wait()

	return reports, errors.Join(errs...)
}

func (o *IngestOrchestrator) run(ctx context.Context, rc domain.RunContext) (*driving.IngestReport, error) {
	logger.Section(fmt.Sprintf("ingest %s", rc.Dataset))
	logger.Info("run %s: dataset=%s mode=%s page_size=%d", rc.RunID, rc.Dataset, rc.Settings.Mode, rc.Settings.PageSize)

	fetcher, err := o.fetchers(rc.Settings)
	if err != nil {
		return nil, fmt.Errorf("create fetcher for %s: %w", rc.Dataset, err)
	}
	transformer, err := o.transformers(rc.Dataset)
	if err != nil {
		return nil, err
	}

	plan, err := o.planner.Plan(ctx, fetcher, o.store, rc.Settings)
	if err != nil {
		return nil, err
	}

	report := &driving.IngestReport{
		Dataset: rc.Dataset,
		RunID:   rc.RunID,
		Plan:    plan,
	}

	if plan.IsEmpty() {
		logger.Info("run %s: nothing to pull (%s)", rc.RunID, plan.Reason)
		return report, nil
	}
	logger.Info("run %s: pulling pages %d-%d (%s)", rc.RunID, plan.StartPage, plan.EndPage, plan.Reason)

	var batch []domain.CanonicalRecord
	pagesInBatch := 0

	flush := func() error {
		if len(batch) == 0 {
			pagesInBatch = 0
			return nil
		}
		n, err := o.store.UpsertBatch(ctx, rc.Dataset, batch)
		if err != nil {
			return fmt.Errorf("run %s: commit after page %d: %w", rc.RunID, report.PagesFetched, err)
		}
		report.RowsUpserted += n
		report.Commits++
		logger.Debug("run %s: committed %d rows (%d pages)", rc.RunID, n, pagesInBatch)
		batch = batch[:0]
		pagesInBatch = 0
		return nil
	}

	it := NewPageIterator(fetcher, plan)
	for it.Next(ctx) {
		report.PagesFetched++

		for _, raw := range it.Rows() {
			rec, err := transformer.Transform(raw)
			if err != nil {
				if errors.Is(err, domain.ErrMissingField) {
					report.RowsSkipped++
					logger.Warn("run %s: page %d: skipping row: %v", rc.RunID, it.Page(), err)
					continue
				}
				return nil, fmt.Errorf("run %s: page %d: %w", rc.RunID, it.Page(), err)
			}
			batch = append(batch, *rec)
		}

		pagesInBatch++
		if pagesInBatch >= rc.Settings.CommitEvery {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := it.Err(); err != nil {
		// The in-flight batch is dropped; work committed at earlier
		// checkpoints is kept and the next run resumes from it.
		return nil, fmt.Errorf("run %s: %w", rc.RunID, err)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	logger.Info("run %s: done in %s: pages=%d upserted=%d skipped=%d commits=%d",
		rc.RunID, time.Since(rc.StartedAt).Round(time.Millisecond),
		report.PagesFetched, report.RowsUpserted, report.RowsSkipped, report.Commits)

	return report, nil
}

func (o *IngestOrchestrator) acquire(dataset domain.Dataset) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[dataset] {
		return fmt.Errorf("%w: ingestion already running for %s", domain.ErrInvalidInput, dataset)
	}
	o.running[dataset] = true
	return nil
}

func (o *IngestOrchestrator) release(dataset domain.Dataset) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, dataset)
}
