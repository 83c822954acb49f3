package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"rankbook/internal/metrics"
	"rankbook/internal/ratelimit"
	"rankbook/internal/respcache"
)

const (
	// Retry policy for 429/5xx/transport failures.
	maxAttempts    = 3
	baseRetryDelay = 1 * time.Second

	defaultHTTPTimeout = 30 * time.Second

	// Bodies larger than this are truncated when extracting detail text.
	maxDetailBytes = 4 << 10
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9 ]{3,16}$`)

// Client is a rate-limited, cached, retrying Riot API client. The limiter
// and cache are shared collaborators so every Client (and every concurrent
// lookup) competes for the same global quota.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	limiter *ratelimit.Limiter
	cache   *respcache.Cache

	baseURLTemplate string
	endpoints       Endpoints

	// swapped out in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLTemplate overrides the region-templated base URL. Useful for
// pointing the client at a test server.
func WithBaseURLTemplate(template string) Option {
	return func(c *Client) { c.baseURLTemplate = template }
}

// WithEndpoints overrides the per-resource path templates.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the clock used for cache freshness decisions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithSleep overrides the retry backoff sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates a Client around a shared limiter and cache.
func NewClient(apiKey string, limiter *ratelimit.Limiter, cache *respcache.Cache, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key must not be empty")
	}
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:          slog.Default(),
		limiter:         limiter,
		cache:           cache,
		baseURLTemplate: DefaultBaseURLTemplate,
		endpoints:       DefaultEndpoints(),
		now:             time.Now,
		sleep:           sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ValidName reports whether name passes the lookup input check.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// LookupPlayer fetches the identity record, ranked standings and top-5
// champion masteries for one player. The three fetches run sequentially and
// the first failure aborts the whole lookup; a partial result is never
// returned.
func (c *Client) LookupPlayer(ctx context.Context, name, region string) (*LookupResult, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, name)
	}

	log := c.logger.With("lookup_id", uuid.NewString(), "name", name, "region", region)
	log.Info("looking up player")

	var identity SummonerResponse
	err := c.fetchResource(ctx, log, KindSummoner, region, name, map[string]string{"name": name}, &identity)
	if err != nil {
		return nil, fmt.Errorf("identity fetch: %w", err)
	}

	params := map[string]string{"summonerId": identity.ID}

	var standings []LeagueEntryResponse
	if err := c.fetchResource(ctx, log, KindLeague, region, identity.ID, params, &standings); err != nil {
		return nil, fmt.Errorf("standings fetch: %w", err)
	}

	var masteries []MasteryEntryResponse
	if err := c.fetchResource(ctx, log, KindMastery, region, identity.ID, params, &masteries); err != nil {
		return nil, fmt.Errorf("masteries fetch: %w", err)
	}
	// Top 5 in upstream order; the API already returns them ranked.
	if len(masteries) > 5 {
		masteries = masteries[:5]
	}

	log.Info("lookup complete",
		"summoner_level", identity.SummonerLevel,
		"standings", len(standings),
		"masteries", len(masteries))

	return &LookupResult{
		Identity:  &identity,
		Standings: standings,
		Masteries: masteries,
	}, nil
}

// fetchResource runs one cache-checked, rate-limited, retried fetch and
// decodes the body into out.
func (c *Client) fetchResource(ctx context.Context, log *slog.Logger, kind, region, identifier string, params map[string]string, out any) error {
	fp := respcache.Fingerprint(kind, region, identifier)
	if body, ok := c.cache.Get(fp, c.now()); ok {
		metrics.CacheHits.WithLabelValues(kind).Inc()
		log.Debug("cache hit", "kind", kind)
		return json.Unmarshal(body, out)
	}
	metrics.CacheMisses.WithLabelValues(kind).Inc()

	reqURL, err := c.buildURL(kind, region, params)
	if err != nil {
		return err
	}

	body, err := c.fetchWithRetry(ctx, log, kind, reqURL)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues(failureClass(err)).Inc()
		return err
	}

	c.cache.Put(fp, body, c.now())
	return json.Unmarshal(body, out)
}

// fetchWithRetry performs up to maxAttempts HTTP calls with exponential
// backoff between retryable failures. The bound and schedule live in one
// explicit loop.
func (c *Client) fetchWithRetry(ctx context.Context, log *slog.Logger, kind, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.RetryAttempts.WithLabelValues(kind).Inc()
			delay := backoffDelay(attempt-1, c.jitter())
			log.Warn("retrying fetch", "kind", kind, "attempt", attempt, "delay", delay, "cause", lastErr)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.fetchOnce(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !Retryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

// fetchOnce waits for rate-limit admission and performs a single call.
func (c *Client) fetchOnce(ctx context.Context, reqURL string) ([]byte, error) {
	if !c.limiter.CanAdmit(time.Now()) {
		metrics.LimiterWaits.Inc()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind, _ := classifyStatus(resp.StatusCode)
		return nil, &StatusError{
			Status: resp.StatusCode,
			Detail: readDetail(resp.Body),
			kind:   kind,
		}
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) buildURL(kind, region string, params map[string]string) (string, error) {
	base, err := resolveTemplate(c.baseURLTemplate, map[string]string{"region": region}, false)
	if err != nil {
		return "", err
	}
	template, ok := c.endpoints[kind]
	if !ok {
		return "", fmt.Errorf("no endpoint template for resource kind %q", kind)
	}
	path, err := resolveTemplate(template, params, true)
	if err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return base + path + sep + "api_key=" + url.QueryEscape(c.apiKey), nil
}

// backoffDelay computes baseRetryDelay * 2^n plus jitter for 0-indexed
// attempt n.
func backoffDelay(n int, jitter time.Duration) time.Duration {
	return baseRetryDelay*(1<<n) + jitter
}

func (c *Client) jitter() time.Duration {
	// The global source is safe for concurrent lookups.
	return time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
}

// readDetail extracts the upstream error message, if the body carries one.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxDetailBytes))
	if err != nil || len(b) == 0 {
		return ""
	}
	var apiErr struct {
		Status struct {
			Message string `json:"message"`
		} `json:"status"`
	}
	if json.Unmarshal(b, &apiErr) == nil && apiErr.Status.Message != "" {
		return apiErr.Status.Message
	}
	return strings.TrimSpace(string(b))
}

func failureClass(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuthFailure):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream"
	case errors.Is(err, ErrUnclassified):
		return "unclassified"
	default:
		return "network"
	}
}
