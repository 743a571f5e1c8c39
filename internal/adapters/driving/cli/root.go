// Package cli wires the cobra command tree to the ingestion services.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hangang-labs/aptsync/internal/adapters/driven/config/file"
	"github.com/hangang-labs/aptsync/internal/adapters/driven/storage/sqlite"
	"github.com/hangang-labs/aptsync/internal/connectors/seoul"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/core/ports/driving"
	"github.com/hangang-labs/aptsync/internal/core/services"
	"github.com/hangang-labs/aptsync/internal/logger"
	"github.com/hangang-labs/aptsync/internal/transforms"
)

// version is stamped by Execute.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

// Services behind the commands. Wired lazily by ensureServices so that
// commands like version never touch the database; tests inject their
// own.
var (
	settingsProvider driven.SettingsProvider
	recordStore      driven.RecordStore
	orchestrator     driving.IngestOrchestrator
)

var rootCmd = &cobra.Command{
	Use:   "aptsync",
	Short: "Ingest Seoul open-data housing datasets into a local store",
	Long: `aptsync pulls the Seoul open-data housing datasets (apartment sale
contracts, rental contracts and the apartment registry) through the
city's paginated API and reconciles them into a local SQLite store.

Runs are incremental by default: each run pulls pages from the head of
the dataset down to the page holding the most recently committed
record, so repeated runs stay cheap while never dropping or
duplicating a record.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.aptsync)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.aptsync/data)")
}

// ensureServices builds the real service graph unless a test already
// injected one.
func ensureServices() error {
	if orchestrator != nil {
		return nil
	}

	settings, err := file.NewSettingsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}

	settingsProvider = flagOverrides{inner: settings}
	recordStore = store
	orchestrator = services.NewIngestOrchestrator(
		settingsProvider,
		seoul.NewFetcher,
		transforms.ForDataset,
		recordStore,
		services.NewPlanner(seoul.NewLocator()),
	)
	return nil
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer func() {
		if recordStore != nil {
			recordStore.Close()
		}
	}()
	return rootCmd.Execute()
}
