// Package harvest implements the harvest subcommand, one incremental
// ingestion run over all tracked apps.
package harvest

import (
	"context"
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/ingest"
	"github.com/tphakala/reviewharvest-go/internal/logging"
	"github.com/tphakala/reviewharvest-go/internal/observability"
	"github.com/tphakala/reviewharvest-go/internal/playstore"
	"github.com/tphakala/reviewharvest-go/internal/sheetstore"
)

// Command returns the harvest subcommand
func Command(settings *conf.Settings) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Run one incremental review harvest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Walk the review sources without writing to the store")

	return cmd
}

// Run executes one harvest over all tracked apps. Store and credential
// failures abort before any ingestion begins.
func Run(ctx context.Context, settings *conf.Settings, dryRun bool) error {
	store, err := sheetstore.New(ctx, &settings.Sheet)
	if err != nil {
		return err
	}
	if err := store.EnsureWorksheet(ctx); err != nil {
		return err
	}

	metrics, err := observability.NewHarvestMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	source := playstore.NewClient(playstore.Config{
		Language:      settings.Harvest.Language,
		Country:       settings.Harvest.Country,
		PageSize:      settings.Harvest.PageSize,
		RatePerSecond: settings.Harvest.RatePerSecond,
		Burst:         settings.Harvest.Burst,
	})

	walker := ingest.NewWalker(source, &settings.Harvest, metrics)
	orchestrator := ingest.NewOrchestrator(store, walker, settings, metrics)
	orchestrator.DryRun = dryRun

	total, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	logging.Info("Job complete", "total_new_rows", total)
	snapshot := metrics.Snapshot()
	for _, name := range slices.Sorted(maps.Keys(snapshot)) {
		logging.Debug("Run metric", "name", name, "value", snapshot[name])
	}
	return nil
}
