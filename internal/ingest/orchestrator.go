package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/logging"
	"github.com/tphakala/reviewharvest-go/internal/observability"
	"github.com/tphakala/reviewharvest-go/internal/review"
)

// Store is the append-only tabular store the orchestrator commits to.
type Store interface {
	// Fingerprints returns all identifiers already present in the store.
	Fingerprints(ctx context.Context) (map[string]struct{}, error)
	// UsedRows returns the number of occupied rows including the header.
	UsedRows(ctx context.Context) (int, error)
	// Append writes records as a single batch at the end of the store.
	Append(ctx context.Context, records []review.Record) error
}

// Orchestrator sequences the walker across all tracked apps and commits
// accepted rows to the store.
type Orchestrator struct {
	store    Store
	walker   *Walker
	settings *conf.Settings
	metrics  *observability.HarvestMetrics

	// DryRun walks and reports without writing to the store.
	DryRun bool

	now func() time.Time // injectable for tests
}

// NewOrchestrator creates an orchestrator over store and walker.
func NewOrchestrator(store Store, walker *Walker, settings *conf.Settings, metrics *observability.HarvestMetrics) *Orchestrator {
	return &Orchestrator{
		store:    store,
		walker:   walker,
		settings: settings,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run executes one harvest: load the dedup set, plan the window, walk every
// tracked app in configured order and append new rows per app as one batch.
// The returned total is the number of accepted rows across all apps.
//
// Only setup-level failures (store reads/writes, window configuration) are
// returned as errors; per-app fetch failures are absorbed by the walker.
func (o *Orchestrator) Run(ctx context.Context) (int, error) {
	runID := uuid.New().String()
	log := ingestLogger.With("run_id", runID)

	seen, err := o.store.Fingerprints(ctx)
	if err != nil {
		return 0, err
	}
	logging.Info("Loaded existing review identifiers", "count", len(seen))

	now := o.now()
	start, err := o.settings.Harvest.StartTime(now)
	if err != nil {
		return 0, err
	}
	window, err := PlanWindow(start, now)
	if err != nil {
		return 0, err
	}
	logging.Info("Harvest window planned",
		"start", window.Start.Format(time.RFC3339),
		"end", window.End.Format(time.RFC3339),
		"dry_run", o.DryRun)

	total := 0
	for _, app := range o.settings.Harvest.Apps {
		used, err := o.store.UsedRows(ctx)
		if err != nil {
			return total, err
		}
		if used >= o.settings.Harvest.MaxRows {
			logging.Warn("Row limit reached, skipping remaining apps",
				"used_rows", used, "max_rows", o.settings.Harvest.MaxRows, "next_app", app.Name)
			log.Warn("Row limit reached", "used_rows", used, "next_app", app.Name)
			break
		}

		rows := o.walker.Walk(ctx, app, seen, window)
		if len(rows) == 0 {
			logging.Info("No new reviews", "app", app.Name)
			continue
		}

		if !o.DryRun {
			if err := o.store.Append(ctx, rows); err != nil {
				return total, err
			}
			o.metrics.RecordRowsAppended(app.Name, len(rows))
		}
		total += len(rows)
		logging.Info("Added reviews", "app", app.Name, "count", len(rows), "dry_run", o.DryRun)
		log.Info("App harvested", "app", app.Name, "count", len(rows))
	}

	logging.Info("Harvest complete", "total_new_rows", total)
	log.Info("Run complete", "total_new_rows", total)
	return total, nil
}
