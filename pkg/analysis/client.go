// Package analysis talks to the external clustering service.
//
// The service accepts a list of conversations and answers with an analytics
// payload: time series plus the cluster hierarchy. [Client] sends the request,
// retries transient failures and validates the answer before handing it out,
// so a malformed payload is never partially applied. Successful responses are
// cached by request body.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustermap/pkg/buildinfo"
	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/conversation"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/httputil"
	"github.com/matzehuels/clustermap/pkg/observability"
)

const (
	// DefaultBaseURL is where the analysis service listens when run locally.
	DefaultBaseURL = "http://localhost:8000"

	// AnalysePath is the endpoint receiving conversations.
	AnalysePath = "/api/analyse"

	// DefaultTimeout bounds a single attempt. Clustering large exports is slow.
	DefaultTimeout = 10 * time.Minute

	// maxRetryWait caps a server-requested Retry-After.
	maxRetryWait = time.Minute

	keyType = "analysis"
)

// Client calls the analysis service.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	log      *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache caches responses in cc for ttl. A zero ttl uses [cache.DefaultTTL].
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) { c.attempts, c.backoff = attempts, backoff }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a client for the service at baseURL. An empty baseURL uses
// [DefaultBaseURL].
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "server url")
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NewNullCache(),
		ttl:      cache.DefaultTTL,
		attempts: 3,
		backoff:  time.Second,
		log:      log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	// Responses from different servers never share cache entries.
	c.keyer = cache.NewScopedKeyer(nil, cache.ServerScope(u.String()))
	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Response is a validated analysis result.
type Response struct {
	Payload  cluster.Analytics
	Raw      []byte
	Cached   bool
	Duration time.Duration
}

// Analyse sends req and returns the validated payload. Unless refresh is set,
// a cached response for an identical request is returned without contacting
// the service.
func (c *Client) Analyse(ctx context.Context, req conversation.AnalyseRequest, refresh bool) (*Response, error) {
	if req.Data == nil {
		req.Data = []conversation.Conversation{}
	}
	if req.MaxClusters != nil && *req.MaxClusters <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "max_clusters must be positive, got %d", *req.MaxClusters)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	key := c.keyer.AnalysisKey(body)
	start := time.Now()

	if !refresh {
		if resp, ok := c.fromCache(ctx, key); ok {
			resp.Duration = time.Since(start)
			return resp, nil
		}
	}

	policy := httputil.Policy{
		Attempts: c.attempts,
		Delay:    c.backoff,
		MaxDelay: maxRetryWait,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			c.log.Warn("analysis request failed, retrying", "attempt", attempt, "wait", wait, "err", err)
			observability.HTTP().OnRetry(ctx, attempt, wait, err)
		},
	}
	var raw []byte
	err = policy.Do(ctx, func() error {
		raw, err = c.post(ctx, body)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	payload, err := cluster.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyType, len(raw))
	}
	return &Response{Payload: payload, Raw: raw, Duration: time.Since(start)}, nil
}

func (c *Client) fromCache(ctx context.Context, key string) (*Response, bool) {
	raw, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	payload, err := cluster.Unmarshal(raw)
	if err != nil {
		c.log.Debug("dropping invalid cache entry", "err", err)
		_ = c.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &Response{Payload: payload, Raw: raw, Cached: true}, true
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	endpoint := c.baseURL.String() + AnalysePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, c.baseURL.Host, AnalysePath)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, c.baseURL.Host, AnalysePath, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, c.baseURL.Host, AnalysePath, resp.StatusCode, time.Since(start))

	if err := httputil.CheckResponse(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(err)
	}
	return data, nil
}

// classify maps a transport failure onto an error code.
func classify(err error) error {
	var se *httputil.StatusError
	switch {
	case errors.As(err, &se):
		switch {
		case se.StatusCode == http.StatusTooManyRequests:
			return errors.Wrap(errors.ErrCodeRateLimited, err, "analysis service is rate limiting")
		case se.StatusCode >= 500:
			return errors.Wrap(errors.ErrCodeNetwork, err, "analysis service failed")
		default:
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "analysis service rejected the request")
		}
	case errors.IsContext(err):
		return errors.Wrap(errors.ErrCodeTimeout, err, "analysis request cancelled")
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "analysis service unreachable")
	}
}
