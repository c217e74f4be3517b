package ingest

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/observability"
	"github.com/tphakala/reviewharvest-go/internal/playstore"
	"github.com/tphakala/reviewharvest-go/internal/review"
)

// Source is the paginated review source for one app. Pages arrive newest
// first; an empty NextToken ends the stream.
type Source interface {
	FetchPage(ctx context.Context, appID, token string) (*playstore.Page, error)
}

// Walker pages through one app's review stream, applying the window, the
// noise filter and deduplication.
type Walker struct {
	source        Source
	minTextLength int
	delayMin      time.Duration
	delayMax      time.Duration
	metrics       *observability.HarvestMetrics

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewWalker creates a walker over source using the harvest settings.
func NewWalker(source Source, settings *conf.HarvestSettings, metrics *observability.HarvestMetrics) *Walker {
	return &Walker{
		source:        source,
		minTextLength: settings.MinTextLength,
		delayMin:      settings.PageDelayMin,
		delayMax:      settings.PageDelayMax,
		metrics:       metrics,
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// Walk fetches the app's reviews newest first and returns the records that
// fall inside window, pass the length filter and are not already in seen.
// Accepted fingerprints are added to seen immediately, so duplicates within
// the same run are caught across pages and apps.
//
// A fetch failure ends the walk for this app only; rows accumulated before
// the failure are still returned. One app's outage must not block the batch.
func (w *Walker) Walk(ctx context.Context, app conf.TrackedApp, seen map[string]struct{}, window Window) []review.Record {
	var rows []review.Record
	token := ""

	for page := 1; ; page++ {
		if page > 1 {
			w.sleep(w.pageDelay())
		}

		p, err := w.source.FetchPage(ctx, app.ID, token)
		if err != nil {
			w.metrics.RecordFetchError(app.Name)
			ingestLogger.Warn("Page fetch failed, keeping accumulated rows",
				"app", app.Name, "page", page, "accumulated", len(rows), "error", err)
			return rows
		}
		w.metrics.RecordPageFetched(app.Name)
		w.metrics.RecordReviewsSeen(app.Name, len(p.Reviews))
		ingestLogger.Debug("Fetched review page",
			"app", app.Name, "page", page, "reviews", len(p.Reviews))

		for i := range p.Reviews {
			raw := &p.Reviews[i]
			at := raw.At.UTC()

			// Too new for this run's window; pages are nominally sorted but
			// slightly older items can interleave, so keep scanning.
			if !at.Before(window.End) {
				continue
			}

			// Backfill boundary reached. The source returns reviews newest
			// first, so nothing older can qualify; stop the whole walk.
			if at.Before(window.Start) {
				ingestLogger.Debug("Reached backfill boundary",
					"app", app.Name, "review_at", at.Format(time.RFC3339))
				return rows
			}

			text := strings.TrimSpace(raw.Text)
			if utf8.RuneCountInString(text) <= w.minTextLength {
				continue
			}

			civilTS := review.CivilTimestamp(at)
			fp := review.Fingerprint(app.ID, text, civilTS)
			if _, dup := seen[fp]; dup {
				w.metrics.RecordDedupHit(app.Name)
				continue
			}

			rows = append(rows, review.Record{
				ID:         fp,
				AppName:    app.Name,
				ReviewedAt: at.In(review.Civil),
				Rating:     raw.Rating,
				IngestedAt: w.now().In(review.Civil),
				Text:       text,
			})
			seen[fp] = struct{}{}
			w.metrics.RecordReviewAccepted(app.Name)
		}

		if p.NextToken == "" {
			return rows
		}
		token = p.NextToken
	}
}

// pageDelay picks a randomized politeness delay between page fetches.
func (w *Walker) pageDelay() time.Duration {
	if w.delayMax <= w.delayMin {
		return w.delayMin
	}
	return w.delayMin + rand.N(w.delayMax-w.delayMin)
}
