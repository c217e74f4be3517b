// Package ingest implements the incremental ingestion engine: the backfill
// window planner, the review stream walker and the run orchestrator.
package ingest

import (
	"log/slog"
	"time"

	"github.com/tphakala/reviewharvest-go/internal/errors"
	"github.com/tphakala/reviewharvest-go/internal/logging"
	"github.com/tphakala/reviewharvest-go/internal/review"
)

// Package-level logger for the ingestion engine
var (
	ingestLogger   *slog.Logger
	ingestLevelVar = new(slog.LevelVar)
)

func init() {
	ingestLevelVar.Set(slog.LevelDebug)
	ingestLogger = logging.ForService("ingest", ingestLevelVar)
}

// Window is the half-open [Start, End) instant range of reviews eligible
// for ingestion. Both bounds are UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// PlanWindow computes the backfill window for a run. End is the instant
// after 23:59:59 of the calendar day preceding now in the civil timezone,
// i.e. the start of the current civil day; reviews from the current day are
// left for the next run so a day is only ever ingested complete. The cutoff
// is derived from the calendar date, so a run at exactly midnight still
// closes over the previous day.
func PlanWindow(start, now time.Time) (Window, error) {
	nowCivil := now.In(review.Civil)
	y, m, d := nowCivil.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, review.Civil).UTC()

	startUTC := start.UTC()
	if startUTC.After(end) {
		return Window{}, errors.Newf("backfill start %s is after window end %s",
			startUTC.Format(time.RFC3339), end.Format(time.RFC3339)).
			Component("ingest").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return Window{Start: startUTC, End: end}, nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
