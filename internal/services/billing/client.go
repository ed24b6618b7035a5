// Package billing fetches organization costs and projects from the OpenAI
// administration API.
package billing

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

	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
)

const (
	costsEndpoint    = "/organization/costs"
	projectsEndpoint = "/organization/projects"

	defaultGroupBy       = "project_id"
	defaultBucketWidth   = "1d"
	defaultCostsLimit    = 31
	defaultProjectsLimit = 100
	defaultTimeout       = 60 * time.Second
)

// ErrUnauthorized is returned when the API rejects the admin key.
var ErrUnauthorized = errors.New("unauthorized: admin key rejected")

// APIError is a non-2xx response other than an authorization failure.
type APIError struct {
	Endpoint   string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s request failed (status %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	HTTPClient     *http.Client
	BaseURL        string
	AdminKey       string
	OrganizationID string
	Timeout        time.Duration
	CacheTTL       time.Duration
}

// Client issues read-only requests against the billing API.
// Successful responses are cached for Config.CacheTTL.
type Client struct {
	http    *http.Client
	cache   *responseCache
	baseURL string
	key     string
	orgID   string
}

// NewClient creates a billing client.
func NewClient(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	cache, err := newResponseCache(defaultCacheBytes, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	return &Client{
		http:    httpClient,
		cache:   cache,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.AdminKey,
		orgID:   cfg.OrganizationID,
	}, nil
}

// CostsQuery selects the cost buckets to fetch.
type CostsQuery struct {
	Start       time.Time
	End         time.Time
	BucketWidth string
	GroupBy     []string
	ProjectIDs  []string
	Limit       int
}

// params encodes the query. The end is moved to the last second of its
// UTC day so that repeated requests during a day share a cache entry.
func (q CostsQuery) params() url.Values {
	v := url.Values{}
	v.Set("start_time", strconv.FormatInt(q.Start.Unix(), 10))

	end := q.End
	if end.IsZero() {
		end = time.Now()
	}
	v.Set("end_time", strconv.FormatInt(EndOfDay(end).Unix(), 10))

	width := q.BucketWidth
	if width == "" {
		width = defaultBucketWidth
	}
	v.Set("bucket_width", width)

	limit := q.Limit
	if limit <= 0 {
		limit = defaultCostsLimit
	}
	v.Set("limit", strconv.Itoa(limit))

	groupBy := q.GroupBy
	if len(groupBy) == 0 {
		groupBy = []string{defaultGroupBy}
	}
	for _, g := range groupBy {
		v.Add("group_by", g)
	}
	for _, id := range q.ProjectIDs {
		v.Add("project_ids", id)
	}

	return v
}

// EndOfDay returns 23:59:59 UTC of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// Costs fetches one page of cost buckets. Further pages are not requested.
func (c *Client) Costs(ctx context.Context, q CostsQuery) (*models.CostsPage, error) {
	params := q.params()

	var page models.CostsPage
	if err := c.get(ctx, costsEndpoint, params, &page); err != nil {
		return nil, err
	}

	if page.HasMore {
		logger.Warn("costs response has more pages than requested; showing first page only",
			"limit", params.Get("limit"),
			"buckets", len(page.Data))
	}

	return &page, nil
}

// ProjectsQuery selects the projects to list.
type ProjectsQuery struct {
	Limit           int
	IncludeArchived bool
}

func (q ProjectsQuery) params() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultProjectsLimit
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("include_archived", strconv.FormatBool(q.IncludeArchived))
	return v
}

// Projects fetches one page of project metadata.
func (c *Client) Projects(ctx context.Context, q ProjectsQuery) (*models.ProjectsPage, error) {
	params := q.params()

	var page models.ProjectsPage
	if err := c.get(ctx, projectsEndpoint, params, &page); err != nil {
		return nil, err
	}

	if page.HasMore {
		logger.Warn("projects response has more pages than requested; showing first page only",
			"limit", params.Get("limit"),
			"projects", len(page.Data))
	}

	return &page, nil
}

// Invalidate drops every cached response.
func (c *Client) Invalidate() {
	c.cache.clear()
}

// Close releases the response cache.
func (c *Client) Close() {
	c.cache.close()
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	key := cacheKey(endpoint, params)
	if body, ok := c.cache.get(key); ok {
		logger.Debug("billing cache hit", "endpoint", endpoint)
		return decode(endpoint, body, out)
	}

	reqURL := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	if c.orgID != "" {
		req.Header.Set("OpenAI-Organization", c.orgID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	logger.Debug("billing request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logger.Error("billing API error", "endpoint", endpoint, "status", resp.StatusCode)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := decode(endpoint, body, out); err != nil {
		return err
	}
	c.cache.set(key, body)

	return nil
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}
