package sections

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// silentLogger discards all log output
var silentLogger = log.New(io.Discard, "", 0)

// BrowserFetcher renders pages in headless Chrome, for sites that build
// their content with JavaScript.
type BrowserFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewBrowserFetcher creates a browser-backed fetcher.
func NewBrowserFetcher(userAgent string, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch renders each url in one shared browser and captures the final DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no urls to fetch")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(silentLogger.Printf),
		chromedp.WithErrorf(silentLogger.Printf),
	)
	defer browserCancel()

	// Start the browser on browserCtx so per-page timeouts do not own it
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	pages := make([]string, len(urls))
	for i, u := range urls {
		pageCtx, cancel := context.WithTimeout(browserCtx, f.timeout)
		err := chromedp.Run(pageCtx,
			chromedp.Navigate(u),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &pages[i], chromedp.ByQuery),
		)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", u, err)
		}
	}

	return buildResult(urls, pages)
}
