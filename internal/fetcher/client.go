package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mhofmann/dpwt-tracker/internal/logger"
)

const (
	// DefaultBaseURL is the tour website serving the results API.
	DefaultBaseURL = "https://www.europeantour.com"

	// DefaultTourID selects the DP World Tour in the results API.
	DefaultTourID = 1

	requestTimeout = 30 * time.Second
)

// ErrUnavailable marks a fetch that kept failing with blocking or transient
// upstream statuses after all retries. Callers should treat it as a skipped
// poll, not a fatal error.
var ErrUnavailable = errors.New("results API unavailable")

// The results API intermittently rejects non-browser clients, so requests
// rotate through a small pool of real browser user agents.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126 Safari/537.36",
}

// Client fetches player result payloads from the tour's public API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	relayBase  string
	requests   int

	retryInitial    time.Duration
	retryMaxElapsed time.Duration
}

// NewClient creates a results API client. relayBase is an optional fetch
// relay tried when the API blocks direct requests; empty disables it.
func NewClient(baseURL, relayBase string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		relayBase:       strings.TrimSuffix(relayBase, "/"),
		retryInitial:    2 * time.Second,
		retryMaxElapsed: 90 * time.Second,
	}
}

// FetchResults retrieves the raw season results payload for a player. It
// tries the tour-scoped URL first and falls back to the unscoped variant,
// which some seasons serve instead.
func (c *Client) FetchResults(ctx context.Context, playerID, season int) ([]byte, error) {
	primary := fmt.Sprintf("%s/api/v1/players/%d/results/%d/?tourId=%d", c.baseURL, playerID, season, DefaultTourID)
	fallback := fmt.Sprintf("%s/api/v1/players/%d/results/%d/", c.baseURL, playerID, season)

	body, err := c.getWithRetry(ctx, primary)
	if err == nil {
		return body, nil
	}

	logger.Warn("primary results URL failed, trying fallback", logger.Fields{
		"player_id": playerID,
		"season":    season,
		"error":     err.Error(),
	})

	body, fallbackErr := c.getWithRetry(ctx, fallback)
	if fallbackErr != nil {
		return nil, err
	}
	return body, nil
}

// getWithRetry fetches one URL with exponential backoff. Blocking statuses
// and 5xx responses are retried; other client errors abort immediately.
func (c *Client) getWithRetry(ctx context.Context, target string) ([]byte, error) {
	var body []byte

	operation := func() error {
		data, err := c.fetchOnce(ctx, target)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxInterval = 20 * time.Second
	bo.MaxElapsedTime = c.retryMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)

	case blockedStatus(resp.StatusCode):
		logger.IncrCounter("fetch.blocked")
		if c.relayBase != "" {
			if body, relayErr := c.fetchViaRelay(ctx, target); relayErr == nil {
				return body, nil
			}
		}
		return nil, fmt.Errorf("upstream status %d: %w", resp.StatusCode, ErrUnavailable)

	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("upstream status %d: %w", resp.StatusCode, ErrUnavailable)

	default:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d for %s", resp.StatusCode, target))
	}
}

// fetchViaRelay routes the request through the configured relay, which sits
// on infrastructure the API does not block.
func (c *Client) fetchViaRelay(ctx context.Context, target string) ([]byte, error) {
	relay := fmt.Sprintf("%s/fetch?url=%s", c.relayBase, url.QueryEscape(target))

	resp, err := c.get(ctx, relay)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay status %d", resp.StatusCode)
	}

	logger.IncrCounter("fetch.relay")
	return io.ReadAll(resp.Body)
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	return resp, nil
}

func (c *Client) nextUserAgent() string {
	ua := userAgents[c.requests%len(userAgents)]
	c.requests++
	return ua
}

func blockedStatus(code int) bool {
	return code == http.StatusForbidden ||
		code == http.StatusTooManyRequests ||
		code == http.StatusServiceUnavailable
}
