package driving

import (
	"context"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// IngestReport summarises one completed run of one dataset.
type IngestReport struct {
	// Dataset the run ingested.
	Dataset domain.Dataset

	// RunID identifies the run in logs.
	RunID string

	// Plan is the page range the run executed.
	Plan domain.IngestionPlan

	// PagesFetched counts pages actually pulled (empty pages included).
	PagesFetched int

	// RowsUpserted counts rows written after per-batch deduplication.
	RowsUpserted int

	// RowsSkipped counts malformed records dropped with a warning.
	RowsSkipped int

	// Commits counts checkpoint transactions issued.
	Commits int
}

// IngestOrchestrator drives ingestion runs.
type IngestOrchestrator interface {
	// Ingest runs the plan-fetch-transform-upsert loop for one dataset
	// and returns its report. A permanent fetch error or a store
	// failure aborts the run; work committed at earlier checkpoints is
	// retained and the next run resumes from it.
	Ingest(ctx context.Context, dataset domain.Dataset) (*IngestReport, error)

	// IngestAll runs every configured dataset concurrently. Datasets
	// touch disjoint tables and upstream resources, so they are safe
	// to run in parallel; errors are joined per dataset.
	IngestAll(ctx context.Context) ([]*IngestReport, error)
}
