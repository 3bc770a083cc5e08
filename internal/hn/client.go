package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	nderrors "github.com/newsdex/newsdex/internal/errors"
)

// DefaultBaseURL is the Firebase REST endpoint for the item API.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

const defaultCacheSize = 4096

// Client is an HTTP Source backed by the Firebase REST API.
//
// Requests are rate limited and fetched items are cached in an LRU so
// repeated rebuilds of overlapping categories do not hammer the API.
// Client is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   *lru.Cache[uint64, *Item]
	retry   nderrors.RetryConfig
	breaker *nderrors.CircuitBreaker
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests to point the
// client at a local server.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative
// means unlimited.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy for transient fetch failures.
// Retrying lives in the adapter; the ingestion core never retries.
func WithRetry(cfg nderrors.RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithCircuitBreaker replaces the breaker guarding the API. A run of
// failed fetches opens it and further requests fail fast until the
// reset timeout elapses.
func WithCircuitBreaker(cb *nderrors.CircuitBreaker) ClientOption {
	return func(c *Client) {
		c.breaker = cb
	}
}

// NewClient creates a Client with sane defaults: 30s request timeout,
// no rate limit, and a small item cache.
func NewClient(opts ...ClientOption) (*Client, error) {
	cache, err := lru.New[uint64, *Item](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create item cache: %w", err)
	}

	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		limiter: rate.NewLimiter(rate.Inf, 1),
		cache:   cache,
		retry:   nderrors.DefaultRetryConfig(),
		breaker: nderrors.NewCircuitBreaker("hn-api"),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Item implements Source.
//
// A null API response (unknown id) is reported as a deleted item rather
// than an error; the pipeline already skips those.
func (c *Client) Item(ctx context.Context, id uint64) (*Item, error) {
	if item, ok := c.cache.Get(id); ok {
		return item, nil
	}

	url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
	item, err := nderrors.Call(c.breaker, func() (*Item, error) {
		return nderrors.RetryWithResult(ctx, c.retry, func() (*Item, error) {
			var item *Item
			if err := c.get(ctx, url, &item); err != nil {
				return nil, err
			}
			return item, nil
		})
	})
	if err != nil {
		if nderrors.GetCode(err) == nderrors.ErrCodeSourceUnavailable {
			return nil, err
		}
		return nil, nderrors.SourceFetchError(fmt.Sprintf("fetch item %d", id), err)
	}
	if item == nil {
		c.log.Warn("item_not_found", slog.Uint64("id", id))
		item = &Item{ID: id, Deleted: true}
	}

	c.cache.Add(id, item)
	return item, nil
}

// TopIDs implements Source.
func (c *Client) TopIDs(ctx context.Context, category Category, limit int) ([]uint64, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, category.endpoint())
	ids, err := nderrors.Call(c.breaker, func() ([]uint64, error) {
		return nderrors.RetryWithResult(ctx, c.retry, func() ([]uint64, error) {
			var ids []uint64
			if err := c.get(ctx, url, &ids); err != nil {
				return nil, err
			}
			return ids, nil
		})
	})
	if err != nil {
		if nderrors.GetCode(err) == nderrors.ErrCodeSourceUnavailable {
			return nil, err
		}
		return nil, nderrors.SourceFetchError(fmt.Sprintf("fetch %s listing", category), err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// get performs a rate-limited GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Source = (*Client)(nil)
