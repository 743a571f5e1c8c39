package domain

import "time"

// RunContext identifies one ingestion run of one dataset. It is created
// by the orchestrator and passed explicitly through planner and fetcher
// calls so that no component needs cross-run mutable state.
type RunContext struct {
	// RunID tags every progress line of the run.
	RunID string

	// Dataset being ingested.
	Dataset Dataset

	// Settings resolved for this run.
	Settings IngestSettings

	// StartedAt is when the run began.
	StartedAt time.Time
}
