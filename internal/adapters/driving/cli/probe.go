package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hangang-labs/aptsync/internal/connectors/seoul"
	"github.com/hangang-labs/aptsync/internal/core/domain"
)

var probeCmd = &cobra.Command{
	Use:   "probe <dataset>",
	Short: "Show a dataset's advertised row count and page range",
	Long: `Probes the upstream service with a single-row window and prints the
advertised total row count, the derived last page, and the local store's
row count for comparison.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	dataset, err := domain.ParseDataset(args[0])
	if err != nil {
		return err
	}

	settings, err := settingsProvider.SettingsFor(dataset)
	if err != nil {
		return err
	}
	fetcher, err := seoul.NewClient(settings)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	total, err := fetcher.TotalCount(ctx)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	lastPage := 0
	if total > 0 {
		lastPage = (total + settings.PageSize - 1) / settings.PageSize
	}
	stored, err := recordStore.Count(ctx, dataset)
	if err != nil {
		return err
	}

	cmd.Printf("%s (%s)\n", dataset, settings.Service)
	cmd.Printf("  upstream rows: %d\n", total)
	cmd.Printf("  pages:         %d (page size %d)\n", lastPage, settings.PageSize)
	cmd.Printf("  stored rows:   %d\n", stored)
	return nil
}
