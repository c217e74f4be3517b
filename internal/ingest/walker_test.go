package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/errors"
	"github.com/tphakala/reviewharvest-go/internal/playstore"
	"github.com/tphakala/reviewharvest-go/internal/review"
)

// fakeSource serves canned pages keyed by "appID|token", so walks are
// replayable across runs.
type fakeSource struct {
	pages map[string]*playstore.Page
	errs  map[string]error
	calls []string
}

func (f *fakeSource) FetchPage(_ context.Context, appID, token string) (*playstore.Page, error) {
	key := appID + "|" + token
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if p, ok := f.pages[key]; ok {
		return p, nil
	}
	return &playstore.Page{}, nil
}

var (
	testApp    = conf.TrackedApp{Name: "MoneyView", ID: "com.whizdm.moneyview.loans"}
	testWindow = Window{
		Start: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 19, 18, 30, 0, 0, time.UTC),
	}
	testNow = time.Date(2025, 8, 20, 4, 30, 0, 0, time.UTC)
)

// longText is comfortably above the default significant-content threshold.
func longText(seed string) string {
	return seed + " " + strings.Repeat("x", 40)
}

func newTestWalker(source Source) *Walker {
	w := NewWalker(source, &conf.HarvestSettings{
		MinTextLength: 30,
		PageDelayMin:  0,
		PageDelayMax:  0,
	}, nil)
	w.now = func() time.Time { return testNow }
	w.sleep = func(time.Duration) {}
	return w
}

func rawReview(id string, text string, at time.Time) playstore.Review {
	return playstore.Review{ID: id, Rating: 4, Text: text, At: at}
}

func TestWalk_WindowBoundary(t *testing.T) {
	t.Parallel()

	inWindow := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{pages: map[string]*playstore.Page{
		testApp.ID + "|": {
			Reviews: []playstore.Review{
				rawReview("r-too-new", longText("too new"), testWindow.End),
				rawReview("r-in", longText("in window"), inWindow),
			},
			NextToken: "p2",
		},
		testApp.ID + "|p2": {
			Reviews: []playstore.Review{
				rawReview("r-at-start", longText("at start"), testWindow.Start),
				rawReview("r-before", longText("before start"), testWindow.Start.Add(-time.Second)),
			},
			NextToken: "p3",
		},
	}}

	rows := newTestWalker(src).Walk(context.Background(), testApp, map[string]struct{}{}, testWindow)

	require.Len(t, rows, 2)
	assert.Equal(t, longText("in window"), rows[0].Text, "review at end is excluded, scan continues")
	assert.Equal(t, longText("at start"), rows[1].Text, "review exactly at start is included")

	// Crossing the backfill boundary stops pagination; page 3 is never fetched.
	assert.Equal(t, []string{testApp.ID + "|", testApp.ID + "|p2"}, src.calls)
}

func TestWalk_LengthFilter(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{pages: map[string]*playstore.Page{
		testApp.ID + "|": {
			Reviews: []playstore.Review{
				rawReview("r-30", strings.Repeat("a", 30), at),
				rawReview("r-31", strings.Repeat("b", 31), at),
				// 31 two-byte runes: the threshold counts characters, not bytes.
				rawReview("r-multibyte", strings.Repeat("é", 31), at.Add(time.Minute)),
				rawReview("r-padded", "  "+strings.Repeat("c", 30)+"  ", at.Add(2*time.Minute)),
			},
		},
	}}

	rows := newTestWalker(src).Walk(context.Background(), testApp, map[string]struct{}{}, testWindow)

	require.Len(t, rows, 2)
	assert.Equal(t, strings.Repeat("b", 31), rows[0].Text, "threshold+1 characters is included")
	assert.Equal(t, strings.Repeat("é", 31), rows[1].Text)
}

func TestWalk_Dedup(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	text := longText("duplicate content")
	fp := review.Fingerprint(testApp.ID, text, review.CivilTimestamp(at))

	src := &fakeSource{pages: map[string]*playstore.Page{
		testApp.ID + "|": {
			Reviews: []playstore.Review{
				rawReview("r-1", text, at),
				// Same content and timestamp under a different source id still
				// collides: the source id is not part of the fingerprint.
				rawReview("r-2", text, at),
				rawReview("r-new", longText("fresh"), at.Add(time.Minute)),
			},
		},
	}}

	seen := map[string]struct{}{}
	rows := newTestWalker(src).Walk(context.Background(), testApp, seen, testWindow)

	require.Len(t, rows, 2, "intra-page duplicate must be dropped")
	assert.Contains(t, seen, fp)

	// A prior run's fingerprint suppresses the review entirely.
	src.calls = nil
	seen2 := map[string]struct{}{fp: {}}
	rows2 := newTestWalker(src).Walk(context.Background(), testApp, seen2, testWindow)
	require.Len(t, rows2, 1)
	assert.Equal(t, longText("fresh"), rows2[0].Text)
}

func TestWalk_FetchFailureKeepsAccumulatedRows(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		pages: map[string]*playstore.Page{
			testApp.ID + "|": {
				Reviews:   []playstore.Review{rawReview("r-1", longText("kept"), at)},
				NextToken: "p2",
			},
		},
		errs: map[string]error{
			testApp.ID + "|p2": errors.New(errors.NewStd("connection reset")).
				Category(errors.CategoryNetwork).Build(),
		},
	}

	rows := newTestWalker(src).Walk(context.Background(), testApp, map[string]struct{}{}, testWindow)

	require.Len(t, rows, 1, "rows accumulated before the failure are returned")
	assert.Equal(t, longText("kept"), rows[0].Text)
}

func TestWalk_RecordFields(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC) // 17:30 IST
	text := "  " + longText("field check") + "  "
	src := &fakeSource{pages: map[string]*playstore.Page{
		testApp.ID + "|": {Reviews: []playstore.Review{rawReview("r-1", text, at)}},
	}}

	rows := newTestWalker(src).Walk(context.Background(), testApp, map[string]struct{}{}, testWindow)

	require.Len(t, rows, 1)
	r := rows[0]
	trimmed := strings.TrimSpace(text)
	assert.Equal(t, review.Fingerprint(testApp.ID, trimmed, "2025-08-10 17:30:00"), r.ID)
	assert.Equal(t, testApp.Name, r.AppName)
	assert.Equal(t, trimmed, r.Text)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, "2025-08-10 17:30:00", r.ReviewedAt.Format(review.CivilTimeFormat))
	assert.Equal(t, "2025-08-20 10:00:00", r.IngestedAt.Format(review.CivilTimeFormat))
}

func TestWalk_SleepsBetweenPages(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{pages: map[string]*playstore.Page{
		testApp.ID + "|": {
			Reviews:   []playstore.Review{rawReview("r-1", longText("one"), at)},
			NextToken: "p2",
		},
		testApp.ID + "|p2": {
			Reviews: []playstore.Review{rawReview("r-2", longText("two"), at.Add(time.Minute))},
		},
	}}

	w := NewWalker(src, &conf.HarvestSettings{
		MinTextLength: 30,
		PageDelayMin:  5 * time.Millisecond,
		PageDelayMax:  5 * time.Millisecond,
	}, nil)
	w.now = func() time.Time { return testNow }

	var slept []time.Duration
	w.sleep = func(d time.Duration) { slept = append(slept, d) }

	rows := w.Walk(context.Background(), testApp, map[string]struct{}{}, testWindow)

	require.Len(t, rows, 2)
	require.Len(t, slept, 1, "delay applies between fetches, not before the first")
	assert.Equal(t, 5*time.Millisecond, slept[0])
}

func TestPageDelay_Range(t *testing.T) {
	t.Parallel()

	w := &Walker{delayMin: time.Second, delayMax: 3 * time.Second}
	for range 100 {
		d := w.pageDelay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}
