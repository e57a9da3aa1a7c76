package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"comicscrape/cf"
	"comicscrape/config"
)

// RequestExecutor fetches detail pages with the configured method (HTTP or
// headless browser). There is exactly one attempt and no fallback between
// methods.
type RequestExecutor struct {
	mode       string
	httpClient *HTTPClient
	profile    cf.BrowserProfile
	timeout    time.Duration

	// browserFetch is swapped in tests
	browserFetch func(ctx context.Context, url string, profile cf.BrowserProfile, timeout time.Duration) (string, error)
}

// NewRequestExecutor creates a new request executor
func NewRequestExecutor(mode string, httpClient *HTTPClient, profile cf.BrowserProfile, timeout time.Duration) (*RequestExecutor, error) {
	switch mode {
	case "", config.FetchModeHTTP:
		mode = config.FetchModeHTTP
	case config.FetchModeBrowser:
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}

	return &RequestExecutor{
		mode:         mode,
		httpClient:   httpClient,
		profile:      profile,
		timeout:      timeout,
		browserFetch: FetchHTMLWithBrowser,
	}, nil
}

// FetchHTML fetches one detail page.
func (e *RequestExecutor) FetchHTML(ctx context.Context, targetURL string) (string, error) {
	slog.Debug("fetching detail page", "url", targetURL, "mode", e.mode)

	if e.mode == config.FetchModeBrowser {
		return e.browserFetch(ctx, targetURL, e.profile, e.timeout)
	}
	return e.httpClient.FetchHTML(ctx, targetURL)
}

// Mode returns the fetch method in use.
func (e *RequestExecutor) Mode() string {
	return e.mode
}
