package terra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mobinasri/terra-scripts/internal/table"
)

// DefaultAPIURL is the public workspace API.
const DefaultAPIURL = "https://api.firecloud.org"

// Common errors.
var (
	ErrNotFound        = errors.New("terra: resource not found")
	ErrForbidden       = errors.New("terra: access forbidden")
	ErrUnauthorized    = errors.New("terra: unauthorized")
	ErrServerError     = errors.New("terra: server error")
	ErrTooManyRequests = errors.New("terra: too many requests")
	ErrNoBucket        = errors.New("terra: workspace has no bucket")
)

// Options configures the API client.
type Options struct {
	// Timeout for individual requests.
	// Default: 60s
	Timeout time.Duration

	// RetryAttempts is the maximum number of retry attempts.
	// Default: 5
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 30s
	RetryMaxBackoff time.Duration

	// PageSize is the number of rows requested per page.
	// Default: 1000
	PageSize int

	// RequestsPerSecond limits the request rate. Zero means unlimited.
	// Default: 5
	RequestsPerSecond float64

	// Token returns a bearer token for each request. Nil sends no
	// Authorization header.
	Token func(ctx context.Context) (string, error)

	// Logger receives retry diagnostics.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:           60 * time.Second,
		RetryAttempts:     5,
		RetryBackoff:      time.Second,
		RetryMaxBackoff:   30 * time.Second,
		PageSize:          1000,
		RequestsPerSecond: 5,
	}
}

// Client reads workspace metadata and data tables.
type Client struct {
	baseURL string
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: limiter,
	}
}

type workspaceResponse struct {
	Workspace struct {
		BucketName string `json:"bucketName"`
	} `json:"workspace"`
}

// WorkspaceBucket returns the name of the workspace's own bucket.
func (c *Client) WorkspaceBucket(ctx context.Context, namespace, workspace string) (string, error) {
	path := "/api/workspaces/" + url.PathEscape(namespace) + "/" + url.PathEscape(workspace)
	query := url.Values{"fields": {"workspace.bucketName"}}

	var resp workspaceResponse
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return "", fmt.Errorf("get workspace %s/%s: %w", namespace, workspace, err)
	}
	if resp.Workspace.BucketName == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrNoBucket, namespace, workspace)
	}
	return resp.Workspace.BucketName, nil
}

type entityQueryResponse struct {
	ResultMetadata struct {
		FilteredPageCount int `json:"filteredPageCount"`
	} `json:"resultMetadata"`
	Results []entity `json:"results"`
}

type entity struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// FetchTable reads every page of a data table. Rows keep the order the API
// returns them in; columns are the sorted union of attribute names.
func (c *Client) FetchTable(ctx context.Context, namespace, workspace, name string) (*table.Table, error) {
	path := "/api/workspaces/" + url.PathEscape(namespace) + "/" + url.PathEscape(workspace) +
		"/entityQuery/" + url.PathEscape(name)

	var entities []entity
	for page := 1; ; page++ {
		query := url.Values{
			"page":          {strconv.Itoa(page)},
			"pageSize":      {strconv.Itoa(c.opts.PageSize)},
			"sortField":     {"name"},
			"sortDirection": {"asc"},
		}

		var resp entityQueryResponse
		if err := c.getJSON(ctx, path, query, &resp); err != nil {
			return nil, fmt.Errorf("fetch table %s page %d: %w", name, page, err)
		}
		entities = append(entities, resp.Results...)

		if page >= resp.ResultMetadata.FilteredPageCount || len(resp.Results) == 0 {
			break
		}
	}

	return buildTable(name, entities), nil
}

func buildTable(name string, entities []entity) *table.Table {
	columnSet := make(map[string]bool)
	var columns []string
	rows := make([]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, e.Name)
		for attr := range e.Attributes {
			if !columnSet[attr] {
				columnSet[attr] = true
				columns = append(columns, attr)
			}
		}
	}
	sort.Strings(columns)

	t := table.New(name, rows, columns)
	for _, e := range entities {
		for attr, v := range e.Attributes {
			t.Set(e.Name, attr, table.ValueOf(attributeValue(v)))
		}
	}
	return t
}

// attributeValue flattens the API's attribute encoding: value lists
// ({"itemsType": ..., "items": [...]}) become []any and entity references
// ({"entityType": ..., "entityName": ...}) become the referenced name.
func attributeValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if items, ok := m["items"].([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = attributeValue(item)
		}
		return out
	}
	if name, ok := m["entityName"].(string); ok {
		return name
	}
	return m
}

// getJSON performs a GET and decodes the JSON body into v, retrying on
// network errors, 429 and 5xx responses.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.opts.Logger.Debug("retrying request", "url", u, "attempt", attempt, "error", lastErr)
			if err := c.backoff(ctx, attempt); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.opts.Token != nil {
			token, err := c.opts.Token(ctx)
			if err != nil {
				return fmt.Errorf("get token: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = ErrTooManyRequests
			} else {
				lastErr = fmt.Errorf("%w: %d %s", ErrServerError, resp.StatusCode, resp.Status)
			}
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return err
		}

		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		err = dec.Decode(v)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.opts.RetryAttempts+1, lastErr)
}

// backoff waits for an exponentially increasing duration with jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > c.opts.RetryMaxBackoff {
		backoff = c.opts.RetryMaxBackoff
	}

	// Add jitter: 0.5 to 1.5 of backoff
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
