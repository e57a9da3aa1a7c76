package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly"

	"comicscrape/cf"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// HTTPClient performs single-attempt requests with a spoofed browser identity,
// Brotli/gzip decompression and challenge detection.
type HTTPClient struct {
	profile    cf.BrowserProfile
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPClient creates a client presenting profile, with a per-request timeout.
func NewHTTPClient(profile cf.BrowserProfile, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		profile:    profile,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// FetchHTML fetches a page and returns its decompressed markup.
// A challenge page is reported as *cf.ChallengeError, a non-2xx status as *StatusError.
func (c *HTTPClient) FetchHTML(ctx context.Context, targetURL string) (string, error) {
	body, err := c.fetch(ctx, targetURL, nil, true)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBytes fetches a binary resource such as an image.
func (c *HTTPClient) FetchBytes(ctx context.Context, targetURL string) ([]byte, error) {
	return c.fetch(ctx, targetURL, func(h http.Header) {
		h.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
		h.Set("Sec-Fetch-Dest", "image")
		h.Set("Sec-Fetch-Mode", "no-cors")
	}, false)
}

// fetch performs a single HTTP request attempt
func (c *HTTPClient) fetch(ctx context.Context, targetURL string, modify func(http.Header), detect bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.profile.ApplyHeaders(req.Header)
	if modify != nil {
		modify(req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	decompressed, wasCompressed, err := cf.DecompressResponseBody(bodyBytes, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %w", err)
	}
	if wasCompressed {
		slog.Debug("decompressed response", "url", targetURL, "from", len(bodyBytes), "to", len(decompressed))
		bodyBytes = decompressed
	}

	if detect {
		if isCF, info := cf.Detect(resp.StatusCode, resp.Header, bodyBytes); isCF {
			return nil, info.AsError(targetURL)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: targetURL, StatusCode: resp.StatusCode}
	}

	slog.Debug("fetched", "url", targetURL, "status", resp.StatusCode, "bytes", len(bodyBytes))
	return bodyBytes, nil
}

// contextTransport binds every colly request to ctx so a cancelled run
// aborts an in-flight catalog fetch.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// CreateCollyCollector creates a Colly collector presenting the client's browser profile
func (c *HTTPClient) CreateCollyCollector(ctx context.Context) *colly.Collector {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(c.timeout)
	collector.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})

	// Status codes are checked in OnResponse, after decompression and challenge detection
	collector.ParseHTTPErrorResponse = true

	c.profile.ApplyToCollector(collector)

	// Add automatic decompression
	collector.OnResponse(func(r *colly.Response) {
		if _, err := cf.DecompressResponse(r); err != nil {
			slog.Warn("failed to decompress response", "url", r.Request.URL.String(), "err", err)
		}
	})

	return collector
}

// FetchCatalog fetches the catalog page through a colly collector.
func (c *HTTPClient) FetchCatalog(ctx context.Context, catalogURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := c.CreateCollyCollector(ctx)

	var (
		body     []byte
		fetchErr error
	)

	collector.OnResponse(func(r *colly.Response) {
		if isCF, info := cf.DetectFromColly(r); isCF {
			fetchErr = info.AsError(catalogURL)
			return
		}
		if r.StatusCode < 200 || r.StatusCode > 299 {
			fetchErr = &StatusError{URL: catalogURL, StatusCode: r.StatusCode}
			return
		}
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if fetchErr == nil {
			fetchErr = err
		}
	})

	slog.Info("fetching catalog", "url", catalogURL)
	if err := collector.Visit(catalogURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if fetchErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(fetchErr, ctxErr) {
			return nil, fmt.Errorf("%w: %v", ctxErr, fetchErr)
		}
		return nil, fetchErr
	}
	if body == nil {
		return nil, fmt.Errorf("no response received for %s", catalogURL)
	}

	return body, nil
}
