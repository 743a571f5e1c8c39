// Package services implements the driving port interfaces.
// Services contain the core business logic: planning a run's page
// range, walking it, transforming rows and committing batches through
// the driven ports (adapters).
//
// Services are pure Go with no CGO; their only third-party imports are
// run identifiers and the errgroup used for concurrent datasets.
package services
