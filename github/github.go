// Package github fetches a user's latest public repositories for display on
// their profile.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devconnect/metrics"

	"golang.org/x/oauth2"
)

var ErrNotFound = errors.New("no github profile found")

// Cache is the subset of cache.Store the client needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type Client struct {
	http     *http.Client
	baseURL  string
	cache    Cache
	cacheTTL time.Duration
}

type Options struct {
	BaseURL  string
	Token    string
	Cache    Cache // nil disables caching and the lookup metric
	CacheTTL time.Duration
	Timeout  time.Duration
}

// NewClient returns a client for the GitHub REST API. When a token is set,
// requests carry it as an OAuth2 bearer token, which lifts the anonymous
// rate limit.
func NewClient(ctx context.Context, opts Options) *Client {
	httpClient := &http.Client{}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = opts.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 10 * time.Second
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.github.com"
	}
	return &Client{
		http:     httpClient,
		baseURL:  base,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// Repos returns the raw JSON array of the user's five most recently created
// repositories.
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	key := "repos:" + strings.ToLower(username)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "github cache read failed", "error", err)
		case ok && json.Valid(body):
			metrics.GitHubCacheLookups.WithLabelValues("hit").Inc()
			return json.RawMessage(body), nil
		case ok:
			if err := c.cache.Invalidate(ctx, key); err != nil {
				slog.WarnContext(ctx, "github cache evict failed", "error", err)
			}
		}
		metrics.GitHubCacheLookups.WithLabelValues("miss").Inc()
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "devconnect")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read github response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("github returned invalid JSON")
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			slog.WarnContext(ctx, "github cache write failed", "error", err)
		}
	}
	return json.RawMessage(body), nil
}
