package domain

// IngestionPlan is the inclusive page range a run will pull.
// It is computed once per run by the planner, consumed by the
// orchestrator, and discarded after the run.
type IngestionPlan struct {
	// StartPage and EndPage bound the run, 1-based and inclusive.
	StartPage int
	EndPage   int

	// AnchorPage is the page currently holding the anchor identity,
	// or 0 when no anchor was used. When set, the plan covers pages
	// 1..AnchorPage inclusive: the anchor's page is re-pulled whole
	// because row order within a page is as untrustworthy as row
	// order across pages.
	AnchorPage int

	// AnchorFound reports whether the anchor search succeeded. False
	// with a non-empty plan means the conservative head-window
	// fallback is in effect.
	AnchorFound bool

	// Reason is a short operator-facing description of how the plan
	// was chosen (resume override, full scan, anchor, head window).
	Reason string
}

// IsEmpty returns true when there is nothing to pull.
func (p IngestionPlan) IsEmpty() bool {
	return p.EndPage < p.StartPage || p.EndPage < 1
}

// Pages returns the number of pages the plan covers.
func (p IngestionPlan) Pages() int {
	if p.IsEmpty() {
		return 0
	}
	return p.EndPage - p.StartPage + 1
}
