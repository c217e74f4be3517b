// Package playstore implements the review source client. It queries the
// Play Store's internal batchexecute endpoint for user reviews of a single
// app, newest first, one page per call with an opaque continuation token.
package playstore

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/reviewharvest-go/internal/errors"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Play Store frontend.
	DefaultBaseURL = "https://play.google.com"

	batchExecutePath = "/_/PlayStoreUi/data/batchexecute"

	// sortNewest requests strict reverse-chronological ordering. The walker's
	// stop-at-boundary logic depends on it.
	sortNewest = 2

	defaultTimeout  = 30 * time.Second
	defaultPageSize = 200

	userAgent = "reviewharvest-go"
)

// Review is one raw review as returned by the source, timestamp in UTC.
type Review struct {
	ID     string
	Rating int
	Text   string
	At     time.Time
}

// Page is one fetch result. An empty NextToken means the stream is
// exhausted.
type Page struct {
	Reviews   []Review
	NextToken string
}

// Config holds the client configuration.
type Config struct {
	BaseURL       string
	Language      string
	Country       string
	PageSize      int
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client fetches review pages for apps. Safe for sequential use; the
// harvester runs one page fetch at a time.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a review source client. Zero config fields fall back to
// sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// FetchPage requests one page of reviews for appID. token is the
// continuation token from the previous page, empty for the first page.
func (c *Client) FetchPage(ctx context.Context, appID, token string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + batchExecutePath)
	if err != nil {
		return nil, errors.New(err).
			Component("playstore").
			Category(errors.CategoryConfiguration).
			Context("base_url", c.cfg.BaseURL).
			Build()
	}
	q := endpoint.Query()
	q.Set("rpcids", rpcUserReviews)
	q.Set("hl", c.cfg.Language)
	q.Set("gl", c.cfg.Country)
	endpoint.RawQuery = q.Encode()

	form := url.Values{"f.req": {buildUserReviewsRequest(appID, c.cfg.PageSize, token)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.New(err).
			Component("playstore").
			Category(errors.CategoryNetwork).
			Build()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(err).
			Component("playstore").
			Category(errors.CategoryNetwork).
			Context("app_id", appID).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("review request returned status %d", resp.StatusCode).
			Component("playstore").
			Category(errors.CategoryHTTP).
			Context("app_id", appID).
			Context("status", resp.StatusCode).
			Build()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(err).
			Component("playstore").
			Category(errors.CategoryNetwork).
			Context("app_id", appID).
			Build()
	}

	page, err := parsePage(raw)
	if err != nil {
		return nil, errors.New(err).
			Component("playstore").
			Category(errors.CategoryParsing).
			Context("app_id", appID).
			Build()
	}
	return page, nil
}
