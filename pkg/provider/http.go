package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/cache"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/httputil"
	"github.com/matzehuels/blockscape/pkg/observability"
)

// DefaultMaxBody caps a provider response.
const DefaultMaxBody = 64 << 20

const cacheKeyType = "range"

// HTTPClient fetches ranges from the remote data API.
//
// Raw response bodies are cached under [cache.Keyer.RangeKey] so a cached
// payload goes through the same decoder as a fresh one. Payloads that fail to
// decode are never cached.
type HTTPClient struct {
	base    string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	refresh bool
	headers map[string]string
	src     blocks.PhaseSource
	logger  *log.Logger

	attempts int
	delay    time.Duration
	maxBody  int64
}

// HTTPOption configures an [HTTPClient].
type HTTPOption func(*HTTPClient)

// WithCache stores responses in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.cache = c
		}
		h.ttl = ttl
	}
}

// WithKeyer overrides the cache key scheme.
func WithKeyer(k cache.Keyer) HTTPOption {
	return func(h *HTTPClient) {
		if k != nil {
			h.keyer = k
		}
	}
}

// WithRefresh bypasses cache reads. Fresh responses are still written.
func WithRefresh(refresh bool) HTTPOption {
	return func(h *HTTPClient) { h.refresh = refresh }
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTPClient) { h.headers[key] = value }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithPhaseSource sets the random source for blink phases.
func WithPhaseSource(src blocks.PhaseSource) HTTPOption {
	return func(h *HTTPClient) {
		if src != nil {
			h.src = src
		}
	}
}

// WithLogger sets the logger for cache and retry diagnostics.
func WithLogger(l *log.Logger) HTTPOption {
	return func(h *HTTPClient) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMaxBody caps the accepted response size in bytes. Larger responses fail
// with MALFORMED_PAYLOAD instead of being truncated.
func WithMaxBody(n int64) HTTPOption {
	return func(h *HTTPClient) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		h.attempts = attempts
		h.delay = delay
	}
}

// NewHTTPClient returns a client for the API at baseURL. It fails with
// INVALID_INPUT when baseURL is not an absolute http(s) URL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	h := &HTTPClient{
		base:     baseURL,
		http:     httputil.NewHTTPClient(),
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      cache.DefaultTTL,
		headers:  map[string]string{"Accept": "application/json"},
		src:      blocks.SharedSource,
		logger:   log.New(io.Discard),
		attempts: 3,
		delay:    time.Second,
		maxBody:  DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name returns the base URL.
func (h *HTTPClient) Name() string { return h.base }

// URL returns the request URL for a range.
func (h *HTTPClient) URL(start, end int) string {
	u, err := url.Parse(h.base)
	if err != nil {
		return h.base
	}
	q := u.Query()
	q.Set("start", strconv.Itoa(start))
	q.Set("end", strconv.Itoa(end))
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch validates the range, then serves it from cache or the API.
func (h *HTTPClient) Fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return nil, err
	}
	return instrument(ctx, "http", start, end, func() ([]blocks.Point, error) {
		return h.fetch(ctx, start, end)
	})
}

// Raw returns the undecoded response body for a range, bypassing the cache.
func (h *HTTPClient) Raw(ctx context.Context, start, end int) ([]byte, error) {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return nil, err
	}
	return h.get(ctx, h.URL(start, end))
}

func (h *HTTPClient) fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	key := h.keyer.RangeKey(h.base, start, end)

	if !h.refresh {
		if points, ok := h.cached(ctx, key); ok {
			h.logger.Debug("cache hit", "start", start, "end", end, "points", len(points))
			return points, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	data, err := h.get(ctx, h.URL(start, end))
	if err != nil {
		return nil, err
	}
	points, err := blocks.Decode(data, h.src)
	if err != nil {
		return nil, err
	}

	if err := h.cache.Set(ctx, key, data, h.ttl); err != nil {
		h.logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return points, nil
}

func (h *HTTPClient) cached(ctx context.Context, key string) ([]blocks.Point, bool) {
	data, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	points, err := blocks.Decode(data, h.src)
	if err != nil {
		h.logger.Warn("dropping undecodable cache entry", "key", key, "err", err)
		_ = h.cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return points, true
}

func (h *HTTPClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, h.attempts, h.delay, func() error {
		var err error
		data, err = h.doRequest(ctx, rawURL)
		if err != nil && httputil.IsRetryable(err) {
			h.logger.Debug("retrying", "url", rawURL, "err", err)
		}
		return err
	})
	if err != nil {
		// Cancellation surfaces as a bare context error.
		if errors.GetCode(err) == "" {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)
		}
		return nil, err
	}
	return data, nil
}

func (h *HTTPClient) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	began := time.Now()

	resp, err := h.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(began))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", rawURL))
	}
	if int64(len(data)) > h.maxBody {
		return nil, errors.New(errors.ErrCodeMalformedPayload,
			"response from %s exceeds %d bytes", rawURL, h.maxBody)
	}
	return data, nil
}

func checkStatus(code int, rawURL string) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := errors.Wrap(errors.ErrCodeHTTPStatus, &errors.StatusError{StatusCode: code, URL: rawURL},
		"provider returned %d", code)
	if code >= 500 || code == http.StatusTooManyRequests {
		return httputil.Retryable(err)
	}
	return err
}
