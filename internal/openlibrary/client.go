// Package openlibrary is a polite client for the Open Library REST API.
//
// Open Library is a free, shared service; the client serializes every
// request through a process-wide minimum-interval gate, identifies
// itself with a User-Agent on each request, and retries server-side
// failures with exponential backoff. Client-side errors (4xx) and
// exhausted retries both degrade to "no result" rather than surfacing
// as errors: a book the catalog cannot resolve keeps whatever data it
// arrived with.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"fable2md/internal/logger"
)

// DefaultBaseURL is the production Open Library endpoint.
const DefaultBaseURL = "https://openlibrary.org"

// editionsPageLimit caps how many editions one lookup fetches.
const editionsPageLimit = 20

// ClientConfig configures the Open Library client. Zero values select
// the production defaults.
type ClientConfig struct {
	BaseURL     string
	UserAgent   string        // identifying header, required by the service's politeness policy
	MinInterval time.Duration // minimum gap between successive requests (default 2.5s)
	MaxRetries  int           // attempts per request on transient failure (default 3)
	BackoffBase time.Duration // first backoff delay, doubled per attempt (default 1s)
	Timeout     time.Duration // per-request HTTP timeout (default 15s)
}

// Client talks to Open Library. The embedded rate limiter is shared
// state: all callers, concurrent or not, serialize through it.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	log         zerolog.Logger
}

// NewClient creates a client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 2500 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		limiter:     rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		log:         logger.WithComponent("openlibrary"),
	}
}

// Search queries by title and, when available, author. Returns the
// first match, or nil when the catalog has nothing for this query or
// the service could not be reached within the retry policy.
func (c *Client) Search(ctx context.Context, title, author string) (*Match, error) {
	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	params.Set("limit", "1")
	return c.search(ctx, params)
}

// SearchFuzzy issues a free-text query combining whatever the caller
// has — the last-resort strategy after exact and variation searches.
func (c *Client) SearchFuzzy(ctx context.Context, query string) (*Match, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")
	return c.search(ctx, params)
}

func (c *Client) search(ctx context.Context, params url.Values) (*Match, error) {
	u := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	var res searchResponse
	ok, err := c.get(ctx, u, &res)
	if err != nil {
		return nil, err
	}
	if !ok || len(res.Docs) == 0 {
		return nil, nil
	}
	return matchFromDoc(res.Docs[0]), nil
}

// FetchEditions returns edition-level records for a work. workKey may
// be "/works/OL123W" or a bare "OL123W". A work without reachable
// editions yields an empty slice, not an error.
func (c *Client) FetchEditions(ctx context.Context, workKey string) ([]Edition, error) {
	key := strings.TrimPrefix(workKey, "/works/")
	u := fmt.Sprintf("%s/works/%s/editions.json?limit=%d", c.baseURL, url.PathEscape(key), editionsPageLimit)

	var res editionsResponse
	ok, err := c.get(ctx, u, &res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return res.Entries, nil
}

// get performs one rate-limited request with the retry policy.
// The boolean result reports whether a usable response was decoded;
// false without error means the request degraded to "no result"
// (4xx, or transient failures past the retry ceiling). The returned
// error is reserved for context cancellation.
func (c *Client) get(ctx context.Context, rawURL string, target interface{}) (bool, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base, 2×base, 4×base, ...
			backoff := c.backoffBase << uint(attempt-1)
			c.log.Debug().
				Dur("backoff", backoff).
				Int("attempt", attempt+1).
				Str("url", rawURL).
				Msg("Backing off before retry")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}

		// The shared gate: at most one request per MinInterval,
		// process-wide, regardless of who is calling.
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return false, err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// Transport errors and timeouts are transient.
			lastErr = err
			continue
		}

		func() {
			defer resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusOK:
				err = json.NewDecoder(resp.Body).Decode(target)
			case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
				err = fmt.Errorf("server error: status %d", resp.StatusCode)
			default:
				// 4xx: the request itself is wrong, retrying cannot help.
				err = &permanentError{status: resp.StatusCode}
			}
		}()

		switch e := err.(type) {
		case nil:
			return true, nil
		case *permanentError:
			c.log.Warn().
				Int("status", e.status).
				Str("url", rawURL).
				Msg("Client error from Open Library, not retrying")
			return false, nil
		default:
			lastErr = err
		}
	}

	c.log.Warn().
		Err(lastErr).
		Int("attempts", c.maxRetries).
		Str("url", rawURL).
		Msg("Open Library request exhausted retries, treating as no result")
	return false, nil
}

type permanentError struct {
	status int
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("client error: status %d", e.status)
}
