package domain

import (
	"fmt"
	"time"
)

// IngestMode selects how much of the dataset a run pulls.
type IngestMode string

// Available ingest modes.
const (
	// ModeFull reloads every page from 1 to the last page. Used for
	// first runs and disaster recovery.
	ModeFull IngestMode = "full"

	// ModeIncremental reloads pages 1..anchor_page, bounded by the most
	// recently committed identity.
	ModeIncremental IngestMode = "incremental"
)

// IsValid returns true if the mode is recognised.
func (m IngestMode) IsValid() bool {
	return m == ModeFull || m == ModeIncremental
}

// String returns the string representation.
func (m IngestMode) String() string { return string(m) }

// ScanStrategy selects the direction of the anchor page search.
type ScanStrategy string

// Available scan strategies.
const (
	// ScanForward scans from page 1 towards the tail. Page 1 holds the
	// upstream's most recently changed rows, so this is the default.
	ScanForward ScanStrategy = "forward"

	// ScanReverse scans from the tail towards page 1, for datasets
	// whose freshness direction is inverted.
	ScanReverse ScanStrategy = "reverse"

	// ScanAuto tries a forward scan first and falls back to a reverse
	// scan when the anchor is not found.
	ScanAuto ScanStrategy = "auto"
)

// IsValid returns true if the strategy is recognised.
func (s ScanStrategy) IsValid() bool {
	return s == ScanForward || s == ScanReverse || s == ScanAuto
}

// String returns the string representation.
func (s ScanStrategy) String() string { return string(s) }

// IngestSettings carries every tunable for one dataset's run.
// Settings are resolved once, before the run starts, and travel through
// the pipeline inside the RunContext; nothing reads the environment or
// any package-level state mid-run.
type IngestSettings struct {
	// Dataset being ingested.
	Dataset Dataset

	// Service is the upstream service name; empty means the dataset
	// default. A query string may ride on the name ("svc?A=1").
	Service string

	// APIKey is the path-embedded upstream key.
	APIKey string

	// PageSize is the number of rows per page window.
	PageSize int

	// Throttle is the polite delay enforced between page calls.
	Throttle time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxRetries bounds attempts for transient failures.
	MaxRetries int

	// RetryBase and RetryCeiling shape the exponential backoff.
	RetryBase    time.Duration
	RetryCeiling time.Duration

	// Mode selects full or incremental planning.
	Mode IngestMode

	// ResumePage, when positive, forces the run to pull
	// resume_page..last_page with no anchor search.
	ResumePage int

	// ForcedAnchorID, when non-zero, pins resumption at a known
	// identity instead of the stored anchor.
	ForcedAnchorID int64

	// HeadWindow is the page count pulled when no reliable anchor can
	// be established.
	HeadWindow int

	// MaxScanPages bounds the anchor search; 0 means scan to the tail.
	MaxScanPages int

	// ScanStrategy sets the anchor search direction.
	ScanStrategy ScanStrategy

	// CommitEvery is the page cadence of checkpoint commits. At most
	// CommitEvery-1 pages of work are lost on a crash.
	CommitEvery int
}

// DefaultIngestSettings returns settings matching the upstream's
// operational defaults for the given dataset.
func DefaultIngestSettings(d Dataset) IngestSettings {
	return IngestSettings{
		Dataset:      d,
		Service:      d.DefaultService(),
		PageSize:     1000,
		Throttle:     200 * time.Millisecond,
		Timeout:      60 * time.Second,
		MaxRetries:   5,
		RetryBase:    time.Second,
		RetryCeiling: 60 * time.Second,
		Mode:         ModeIncremental,
		HeadWindow:   3,
		MaxScanPages: 50,
		ScanStrategy: ScanForward,
		CommitEvery:  5,
	}
}

// Validate checks the settings are runnable.
func (s IngestSettings) Validate() error {
	if !s.Dataset.IsValid() {
		return fmt.Errorf("%w: dataset %q", ErrInvalidInput, s.Dataset)
	}
	if s.APIKey == "" {
		return fmt.Errorf("%w: api key is not configured", ErrInvalidInput)
	}
	if s.Service == "" {
		return fmt.Errorf("%w: service name is not configured", ErrInvalidInput)
	}
	if s.PageSize < 1 {
		return fmt.Errorf("%w: page size %d", ErrInvalidInput, s.PageSize)
	}
	if !s.Mode.IsValid() {
		return fmt.Errorf("%w: mode %q", ErrInvalidInput, s.Mode)
	}
	if !s.ScanStrategy.IsValid() {
		return fmt.Errorf("%w: scan strategy %q", ErrInvalidInput, s.ScanStrategy)
	}
	if s.CommitEvery < 1 {
		return fmt.Errorf("%w: commit cadence %d", ErrInvalidInput, s.CommitEvery)
	}
	if s.HeadWindow < 1 {
		return fmt.Errorf("%w: head window %d", ErrInvalidInput, s.HeadWindow)
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries %d", ErrInvalidInput, s.MaxRetries)
	}
	return nil
}
