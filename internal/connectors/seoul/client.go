// Package seoul implements the connector for the Seoul open-data
// portal. The portal serves municipal datasets through a positional
// REST interface with no cursor, no ordering guarantee and a habit of
// reporting backend failures with HTTP 200, so the connector owns the
// full retry, fallback and throttling policy and exposes only clean
// pages of rows upward.
package seoul

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/logger"
)

// Upstream hosts, tried in order. The plain HTTP endpoint is the
// documented one and the more reliable; the TLS endpoint is the
// fallback for networks that block port 8088.
var defaultHosts = []string{
	"http://openapi.seoul.go.kr:8088",
	"https://openapi.seoul.go.kr:443",
}

// maxResponseBytes caps how much of a response body is read. The
// largest legitimate page is a few megabytes of JSON.
const maxResponseBytes = 64 << 20

// Client fetches pages from one upstream service. It implements
// driven.PageFetcher: retries, host and format fallbacks and the
// polite inter-request delay all live here.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	settings domain.IngestSettings

	hosts     []string
	hostIdx   int
	typeToken string

	service string
	query   string
}

var _ driven.PageFetcher = (*Client)(nil)

// NewClient creates a fetcher bound to one run's settings. A query
// string riding on the service name ("svc?KEY=V") is split off and
// appended to every request URL.
func NewClient(settings domain.IngestSettings) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	service, query, _ := strings.Cut(settings.Service, "?")

	limit := rate.Inf
	if settings.Throttle > 0 {
		limit = rate.Every(settings.Throttle)
	}

	return &Client{
		http:      &http.Client{Timeout: settings.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		settings:  settings,
		hosts:     defaultHosts,
		typeToken: "json",
		service:   service,
		query:     query,
	}, nil
}

// NewFetcher is a driven.FetcherFactory.
func NewFetcher(settings domain.IngestSettings) (driven.PageFetcher, error) {
	return NewClient(settings)
}

// PageSize returns the configured window size.
func (c *Client) PageSize() int { return c.settings.PageSize }

// FetchPage returns the rows of one 1-based page. An empty slice means
// the window held no rows, which near the tail is normal.
func (c *Client) FetchPage(ctx context.Context, pageNo int) ([]domain.RawRecord, error) {
	if pageNo < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, pageNo)
	}
	start := (pageNo-1)*c.settings.PageSize + 1
	end := pageNo * c.settings.PageSize

	env, err := c.call(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", c.settings.Dataset, pageNo, err)
	}
	return env.Rows, nil
}

// TotalCount probes the advertised row count with a single-row window.
func (c *Client) TotalCount(ctx context.Context) (int, error) {
	env, err := c.call(ctx, 1, 1)
	if err != nil {
		return 0, fmt.Errorf("probe %s total count: %w", c.settings.Dataset, err)
	}
	if env.TotalCount < 0 {
		return 0, fmt.Errorf("probe %s total count: upstream did not report list_total_count", c.settings.Dataset)
	}
	return env.TotalCount, nil
}

// LastPage derives the final page number from the advertised count.
func (c *Client) LastPage(ctx context.Context) (int, error) {
	total, err := c.TotalCount(ctx)
	if err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, nil
	}
	return (total + c.settings.PageSize - 1) / c.settings.PageSize, nil
}

// call performs one upstream window request with the full retry policy.
// Transient failures back off exponentially and rotate to the fallback
// host; a file type complaint flips the format token to uppercase and
// retries immediately; everything else is permanent.
func (c *Client) call(ctx context.Context, start, end int) (*envelope, error) {
	var lastErr error

	for attempt := 0; attempt < c.settings.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		env, err := c.once(ctx, start, end)
		if err == nil {
			return env, nil
		}
		lastErr = err

		if apiErr, ok := asAPIError(err); ok {
			if wantsUppercaseType(apiErr) && c.typeToken == "json" {
				// The free replay cannot loop: the guard requires the
				// lowercase token and the flip below is one-way, so this
				// branch is taken at most once per client.
				logger.Debug("%s: retrying with uppercase format token after %s", c.settings.Dataset, apiErr.Code)
				c.typeToken = "JSON"
				attempt--
				continue
			}
			return nil, err
		}
		if !IsTransient(err) {
			return nil, err
		}

		c.hostIdx = (c.hostIdx + 1) % len(c.hosts)
		logger.Warn("%s: window %d-%d attempt %d failed, will retry: %v",
			c.settings.Dataset, start, end, attempt+1, err)
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.settings.MaxRetries, lastErr)
}

// once performs a single request against the current host.
func (c *Client) once(ctx context.Context, start, end int) (*envelope, error) {
	u := c.requestURL(start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transient("request %s window %d-%d: %v", c.service, start, end, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transient("read response: %v", err)
	}

	if resp.StatusCode >= 500 {
		return nil, transient("upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, snippet(body))
	}
	if looksLikeServerError(string(body)) {
		return nil, transient("upstream reported a backend failure: %s", snippet(body))
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, snippet(body))
	}

	if env.Result != nil && env.Result.Code != "" && !strings.HasPrefix(env.Result.Code, "INFO-000") {
		if env.Result.Code == emptyDatasetCode {
			return &envelope{TotalCount: 0, Rows: nil}, nil
		}
		return nil, &APIError{Code: env.Result.Code, Message: env.Result.Message}
	}

	return env, nil
}

func (c *Client) requestURL(start, end int) string {
	u := fmt.Sprintf("%s/%s/%s/%s/%d/%d",
		c.hosts[c.hostIdx],
		url.PathEscape(c.settings.APIKey),
		c.typeToken,
		url.PathEscape(c.service),
		start, end)
	if c.query != "" {
		u += "?" + c.query
	}
	return u
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.settings.RetryBase << (attempt - 1)
	if d > c.settings.RetryCeiling || d <= 0 {
		d = c.settings.RetryCeiling
	}
	return d
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
