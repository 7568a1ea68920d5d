package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrRateLimited = errors.New("linkedin rate limited")
	ErrBlocked     = errors.New("linkedin blocked request")
)

// Guest endpoints. The api/seeMoreJobPostings one returns bare card markup
// and tolerates anonymous sessions better than the html search page, which
// is kept as the fallback.
const (
	ListingEndpoint  = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	FallbackEndpoint = "https://www.linkedin.com/jobs/search"
	PostingEndpoint  = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"

	homeURL = "https://www.linkedin.com"
)

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Client is an anonymous browser-ish session: cookie jar, rotating
// User-Agent, paced requests. Safe for sequential use only.
type Client struct {
	hc      *http.Client
	limiter *rate.Limiter
}

// NewClient builds a session paced by limiter; nil means no pacing beyond
// the caller's own sleeps.
func NewClient(limiter *rate.Limiter) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		hc: &http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		limiter: limiter,
	}
}

// DefaultLimiter paces a polite interactive session.
func DefaultLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

// Warmup hits the landing page once so the jar holds the usual guest
// cookies before the first search request. Best effort.
func (c *Client) Warmup(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homeURL, nil)
	if err != nil {
		return
	}
	c.browserHeaders(req)
	res, err := c.hc.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

// Response is the already-drained reply to a Get.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Get performs one paced GET. HTTP 429 comes back wrapped in ErrRateLimited,
// 403/999 in ErrBlocked; other non-2xx statuses are plain errors. The body is
// fully read before returning.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	c.browserHeaders(req)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin get: %w", err)
	}
	data, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("linkedin read body: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("status 429: %w", ErrRateLimited)
	case res.StatusCode == http.StatusForbidden || res.StatusCode == 999:
		return nil, fmt.Errorf("status %d server=%q: %w", res.StatusCode, res.Header.Get("Server"), ErrBlocked)
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("linkedin status %d body=%s", res.StatusCode, truncate(string(data), 240))
	}

	return &Response{
		Status:      res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *Client) browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("DNT", "1")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
