// Package fetch retrieves the trending repository list from the upstream
// trending API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/retry"
	"github.com/stahnma/gh-trending/internal/trending"
)

// DefaultBaseURL is the public trending API.
const DefaultBaseURL = "https://gh-trending-api.herokuapp.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Periods accepted by the upstream API.
var Periods = []string{"daily", "weekly", "monthly"}

// ValidPeriod reports whether p is one of Periods.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if p == v {
			return true
		}
	}
	return false
}

// Fetcher returns the raw trending records for a language and period.
type Fetcher interface {
	Fetch(ctx context.Context, language, period string) ([]trending.Record, error)
}

// Client talks to the trending API. It holds no state between calls.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	log            logrus.FieldLogger
	maxAttempts    int
	attemptTimeout time.Duration
	retryDelay     time.Duration
	rateLimitBase  time.Duration
	sleep          func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxAttempts sets the attempt limit. Default 3.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithAttemptTimeout sets the timeout of a single attempt. Default 30s.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithRetryDelay sets the delay after an ordinary failure. Default 2s.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithRateLimitBase sets the base of the 429 backoff. Default 10s.
func WithRateLimitBase(d time.Duration) Option {
	return func(c *Client) { c.rateLimitBase = d }
}

// WithSleep replaces the backoff sleep.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, log logrus.FieldLogger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		log:            log,
		maxAttempts:    3,
		attemptTimeout: 30 * time.Second,
		retryDelay:     2 * time.Second,
		rateLimitBase:  10 * time.Second,
		sleep:          retry.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests the trending list. An empty language means all languages.
// Every failure, including exhausted retries, wraps trending.ErrFetch.
func (c *Client) Fetch(ctx context.Context, language, period string) ([]trending.Record, error) {
	op := fmt.Sprintf("fetch trending since=%s language=%q", period, language)
	if !ValidPeriod(period) {
		return nil, trending.NewError(trending.ErrFetch, op, errors.Errorf("unsupported period %q", period))
	}

	params := url.Values{}
	params.Set("since", period)
	if language != "" {
		params.Set("language", language)
	}
	endpoint := c.baseURL + "/repositories?" + params.Encode()

	log := c.log.WithFields(logrus.Fields{"since": period, "language": language})
	log.Info("fetching trending repositories")

	var records []trending.Record
	err := retry.Do(ctx, func(ctx context.Context, attempt int) error {
		recs, err := c.attempt(ctx, endpoint, attempt)
		if err != nil {
			log.WithError(err).Warnf("attempt %d/%d failed", attempt+1, c.maxAttempts)
			return err
		}
		records = recs
		return nil
	},
		retry.WithMaxAttempts(c.maxAttempts),
		retry.WithDelay(c.retryDelay),
		retry.WithSleep(c.sleep),
	)
	if err != nil {
		return nil, trending.NewError(trending.ErrFetch, op, err)
	}

	log.Infof("fetched %d trending repositories", len(records))
	return records, nil
}

func (c *Client) attempt(ctx context.Context, endpoint string, attempt int) ([]trending.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Stop(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		wait := retry.Backoff(c.rateLimitBase, attempt)
		c.log.Warnf("rate limited, waiting %s before retrying", wait)
		return nil, retry.After(errors.New("rate limited (HTTP 429)"), wait)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	records, err := trending.DecodeRecords(body)
	if err != nil {
		return nil, retry.Stop(err)
	}
	return records, nil
}
