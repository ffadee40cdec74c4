package sections

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher downloads pages with a plain HTTP collector.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
}

// NewCollyFetcher creates a fetcher. A nil transport uses colly's default.
func NewCollyFetcher(userAgent string, timeout time.Duration, transport http.RoundTripper) *CollyFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFetcher{userAgent: userAgent, timeout: timeout, transport: transport}
}

// Fetch retrieves every url in turn. The first failing url fails the fetch.
func (f *CollyFetcher) Fetch(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no urls to fetch")
	}

	collector := colly.NewCollector(colly.AllowURLRevisit())
	if f.userAgent != "" {
		collector.UserAgent = f.userAgent
	}
	collector.SetRequestTimeout(f.timeout)
	if f.transport != nil {
		collector.WithTransport(f.transport)
	}

	pages := make([]string, len(urls))
	collector.OnResponse(func(r *colly.Response) {
		idx, err := strconv.Atoi(r.Ctx.Get("index"))
		if err != nil || idx < 0 || idx >= len(pages) {
			return
		}
		pages[idx] = string(r.Body)
	})

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reqCtx := colly.NewContext()
		reqCtx.Put("index", strconv.Itoa(i))
		if err := collector.Request(http.MethodGet, u, nil, reqCtx, nil); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
		}
	}
	collector.Wait()

	return buildResult(urls, pages)
}
