package driven

import "github.com/hangang-labs/aptsync/internal/core/domain"

// SettingsProvider resolves the run settings for each configured
// dataset. Resolution happens once per run; the returned value is a
// copy and mutating it has no effect on later runs.
type SettingsProvider interface {
	// SettingsFor returns the resolved settings for one dataset.
	SettingsFor(dataset domain.Dataset) (domain.IngestSettings, error)

	// Datasets lists the datasets enabled in the configuration.
	Datasets() []domain.Dataset
}
