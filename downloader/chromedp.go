package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"comicscrape/cf"
)

// BrowserSession manages a headless chromedp browser context.
type BrowserSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	profile cf.BrowserProfile
	timeout time.Duration
}

// NewBrowserSession starts a headless browser presenting profile.
func NewBrowserSession(ctx context.Context, profile cf.BrowserProfile, timeout time.Duration) *BrowserSession {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ua := profile.UserAgent
	if ua == "" {
		ua = cf.DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(ua),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	return &BrowserSession{
		ctx:     browserCtx,
		cancel:  func() { cancelBrowser(); cancelAlloc() },
		profile: profile,
		timeout: timeout,
	}
}

// Navigate loads url and waits for the body to be ready.
// The rendered page is checked for a challenge before returning.
func (bs *BrowserSession) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(bs.ctx, bs.timeout)
	defer cancel()

	var tasks []chromedp.Action

	if bs.profile.AcceptLanguage != "" {
		headers := network.Headers{"Accept-Language": bs.profile.AcceptLanguage}
		tasks = append(tasks,
			network.Enable(),
			network.SetExtraHTTPHeaders(headers),
		)
	}

	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)

	if err := chromedp.Run(ctx, tasks...); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	html, err := bs.GetHTML()
	if err != nil {
		slog.Warn("could not read page for challenge detection", "url", url, "err", err)
		return nil
	}

	// chromedp does not expose the document status, assume 200
	if isCF, info := cf.Detect(200, nil, []byte(html)); isCF {
		return info.AsError(url)
	}

	slog.Debug("browser navigation successful", "url", url)
	return nil
}

// GetHTML returns the page HTML
func (bs *BrowserSession) GetHTML() (string, error) {
	ctx, cancel := context.WithTimeout(bs.ctx, 10*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

// Close closes the browser session
func (bs *BrowserSession) Close() {
	if bs.cancel != nil {
		bs.cancel()
	}
}

// FetchHTMLWithBrowser renders url in a fresh headless browser and returns its HTML.
func FetchHTMLWithBrowser(ctx context.Context, url string, profile cf.BrowserProfile, timeout time.Duration) (string, error) {
	session := NewBrowserSession(ctx, profile, timeout)
	defer session.Close()

	if err := session.Navigate(url); err != nil {
		return "", err
	}

	html, err := session.GetHTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	return html, nil
}
