package crawler

import (
	"fmt"
	"time"

	"github.com/alvmarrod/content-weaver/internal/config"
	"github.com/gocolly/colly/v2"
)

// DefaultRequestTimeout bounds a single fetch
const DefaultRequestTimeout = 10 * time.Second

// Fetcher retrieves the body of a single URL
type Fetcher interface {
	Fetch(rawURL string) ([]byte, error)
}

// FetchError describes why a single fetch failed.
// StatusCode is 0 for transport errors and timeouts.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CollyFetcher performs one GET per call through a colly collector.
// No retries are attempted.
type CollyFetcher struct {
	base *colly.Collector
}

// NewCollyFetcher creates a fetcher with a fixed User-Agent and timeout
func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	base := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(), // dedup is owned by the Frontier
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
		colly.MaxDepth(0),
	)
	base.SetRequestTimeout(timeout)

	return &CollyFetcher{base: base}
}

// Fetch GETs rawURL and returns the body on a 2xx response
func (f *CollyFetcher) Fetch(rawURL string) ([]byte, error) {
	// A clone shares the HTTP backend but carries its own callbacks
	c := f.base.Clone()

	var (
		body   []byte
		status int
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	if status < 200 || status > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
	}

	return body, nil
}
