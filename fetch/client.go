// Package fetch talks to the remote badge data source. It resolves a
// user's awarded badges through a cursor-paginated JSON API, retrying
// transient failures and keeping under the service's rate limits. Callers
// resolve all I/O here first and only then feed records into the managers,
// which have no async surface of their own.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// StatusError indicates a non-2xx response that was not retried away.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.StatusCode)
}

// UserBadge is a single awarded badge as reported by the remote service.
type UserBadge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AwardedDate pairs a badge id with the time it was awarded.
type AwardedDate struct {
	BadgeID   int64     `json:"badgeId"`
	AwardedAt time.Time `json:"awardedDate"`
}

type badgePage struct {
	Data           []UserBadge `json:"data"`
	NextPageCursor string      `json:"nextPageCursor,omitempty"`
}

type awardedPage struct {
	Data []AwardedDate `json:"data"`
}

// Client fetches badge data from the remote service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
	pageSize   int
	batchSize  int
	parallel   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests at rps requests per second with the
// given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithMaxRetries sets how many times a request is retried on 429/5xx or
// transport errors.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryBase sets the base delay for exponential backoff between
// retries.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

// WithPageSize sets the page size requested from the badges endpoint.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithBatchSize sets the chunk size for awarded-dates lookups.
func WithBatchSize(n int) Option {
	return func(c *Client) { c.batchSize = n }
}

// WithParallelism bounds concurrent awarded-dates requests.
func WithParallelism(n int) Option {
	return func(c *Client) { c.parallel = n }
}

// NewClient creates a client for the badge service at baseURL.
func NewClient(baseURL string, optFns ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		maxRetries: 3,
		retryBase:  200 * time.Millisecond,
		pageSize:   100,
		batchSize:  100,
		parallel:   4,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(c)
		}
	}
	return c
}

// UserBadges returns every badge awarded to the user, following pagination
// cursors until the service reports no further pages.
func (c *Client) UserBadges(ctx context.Context, userID int64) ([]UserBadge, error) {
	var (
		badges []UserBadge
		cursor string
	)

	for {
		u := fmt.Sprintf("%s/v1/users/%d/badges?limit=%d", c.baseURL, userID, c.pageSize)
		if cursor != "" {
			u += "&cursor=" + url.QueryEscape(cursor)
		}

		var page badgePage
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, err
		}

		badges = append(badges, page.Data...)
		if page.NextPageCursor == "" {
			return badges, nil
		}
		cursor = page.NextPageCursor
	}
}

// AwardedDates resolves award timestamps for the given badge ids, batching
// the lookups and running batches in parallel with bounded concurrency.
func (c *Client) AwardedDates(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]time.Time, error) {
	if len(badgeIDs) == 0 {
		return map[int64]time.Time{}, nil
	}

	var (
		mu  sync.Mutex
		out = make(map[int64]time.Time, len(badgeIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for start := 0; start < len(badgeIDs); start += c.batchSize {
		end := min(start+c.batchSize, len(badgeIDs))
		chunk := badgeIDs[start:end]

		g.Go(func() error {
			ids := make([]string, len(chunk))
			for i, id := range chunk {
				ids[i] = strconv.FormatInt(id, 10)
			}
			u := fmt.Sprintf("%s/v1/users/%d/badges/awarded-dates?badgeIds=%s",
				c.baseURL, userID, strings.Join(ids, ","))

			var page awardedPage
			if err := c.getJSON(ctx, u, &page); err != nil {
				return err
			}

			mu.Lock()
			for _, d := range page.Data {
				out[d.BadgeID] = d.AwardedAt
			}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON performs a rate-limited GET with retries and decodes the JSON
// response into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base, 2*base, 4*base, ...
			delay := c.retryBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, err := c.getOnce(ctx, url)
		if err == nil {
			return json.Unmarshal(body, v)
		}

		lastErr = err
		if !retryable(err) {
			return err
		}
	}

	return lastErr
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return io.ReadAll(resp.Body)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	// Transport-level failures are worth another attempt unless the
	// context is already done.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
