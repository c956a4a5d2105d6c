// Package wordpress is a small client for the WordPress REST API (wp/v2).
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/config"
)

const (
	apiPrefix       = "/wp-json/wp/v2"
	maxResponseSize = 64 * 1024 * 1024
	maxPages        = 10000
)

// APIError is a non-2xx response that was not retried.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress api %d: %s - %s", e.StatusCode, e.Status, e.URL)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
	pageSize   int
	pageDelay  time.Duration
	maxRetries int
	retryWait  time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageDelay = d }
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRetryWait sets the initial backoff between retried requests.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// NewClient builds a client for cfg.URL. Basic auth is sent whenever an
// application password is configured; the username falls back to "admin".
func NewClient(cfg config.WordPressConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		pageSize:   cfg.PerPage,
		pageDelay:  cfg.PageDelay(),
		maxRetries: cfg.MaxRetries,
		retryWait:  time.Second,
	}
	if cfg.AppPassword != "" {
		c.username = cfg.Username
		if c.username == "" {
			c.username = "admin"
		}
		c.password = strings.Join(strings.Fields(cfg.AppPassword), "")
	}
	if c.pageSize <= 0 {
		c.pageSize = 100
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Authenticated() bool {
	return c.password != ""
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	u := c.baseURL + apiPrefix + "/" + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable ||
		status == http.StatusBadGateway || status == http.StatusGatewayTimeout
}

// get performs one GET, retrying rate limits, gateway errors and transport
// failures with exponential backoff.
func (c *Client) get(ctx context.Context, urlStr string) ([]byte, http.Header, error) {
	var (
		body    []byte
		headers http.Header
	)
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if c.password != "" {
			req.SetBasicAuth(c.username, c.password)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("request %s: %w", urlStr, err)
		}
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read response %s: %w", urlStr, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), URL: urlStr}
			if retryable(resp.StatusCode) {
				logutil.GetLogger(ctx).Warn("wordpress api busy, retrying",
					zap.Int("status", resp.StatusCode), zap.String("url", urlStr))
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		body, headers = data, resp.Header
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWait
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, nil, err
	}
	return body, headers, nil
}

func (c *Client) sleep(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.pageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ListAll walks every page of endpoint and returns the raw items in order.
// The X-WP-TotalPages header bounds the walk; without it the walk stops at
// the first short page.
func (c *Client) ListAll(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	totalPages := -1
	for page := 1; page <= maxPages; page++ {
		if totalPages >= 0 && page > totalPages {
			break
		}
		if page > 1 {
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
		}
		query := url.Values{}
		for k, v := range params {
			query[k] = append([]string(nil), v...)
		}
		query.Set("per_page", strconv.Itoa(c.pageSize))
		query.Set("page", strconv.Itoa(page))

		body, headers, err := c.get(ctx, c.buildURL(endpoint, query))
		if err != nil {
			return nil, err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", endpoint, page, err)
		}
		all = append(all, items...)
		if v := headers.Get("X-WP-TotalPages"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				totalPages = n
			}
		}
		logutil.GetLogger(ctx).Debug("fetched page",
			zap.String("endpoint", endpoint), zap.Int("page", page), zap.Int("total_pages", totalPages),
			zap.Int("items", len(items)), zap.String("total", headers.Get("X-WP-Total")))
		if totalPages < 0 && len(items) < c.pageSize {
			break
		}
		if len(items) == 0 {
			break
		}
	}
	return all, nil
}

func decodeAll[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	items, err := c.ListAll(ctx, "categories", nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Category](items)
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	items, err := c.ListAll(ctx, "tags", nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Tag](items)
}

// Posts lists posts with embedded media and terms. status may be a comma
// separated list or "any".
func (c *Client) Posts(ctx context.Context, status string) ([]Post, error) {
	params := url.Values{}
	params.Set("_embed", "1")
	if status != "" {
		params.Set("status", status)
	}
	items, err := c.ListAll(ctx, "posts", params)
	if err != nil {
		return nil, err
	}
	return decodeAll[Post](items)
}

// Media fetches a single attachment by id.
func (c *Client) Media(ctx context.Context, id int64) (*Media, error) {
	body, _, err := c.get(ctx, c.buildURL("media/"+strconv.FormatInt(id, 10), nil))
	if err != nil {
		return nil, err
	}
	media := &Media{}
	if err := json.Unmarshal(body, media); err != nil {
		return nil, fmt.Errorf("decode media %d: %w", id, err)
	}
	return media, nil
}
