package downloader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"comicscrape/models"
)

// ParseDocument parses fetched markup into a goquery document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// FetchCatalogItems fetches the catalog page and returns its entries in document order.
func FetchCatalogItems(ctx context.Context, client *HTTPClient, site SitePlugin, catalogURL string) ([]models.CatalogItem, error) {
	base, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	body, err := client.FetchCatalog(ctx, catalogURL)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}

	items := site.EnumerateCatalog(doc, base)
	if len(items) == 0 {
		slog.Warn("catalog page has no items, the page layout may have changed", "url", catalogURL, "site", site.GetSiteName())
	} else {
		slog.Info("found catalog items", "count", len(items))
	}

	return items, nil
}

// FetchDetail fetches one detail page and parses it.
func FetchDetail(ctx context.Context, executor *RequestExecutor, detailURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(detailURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid detail URL: %w", err)
	}

	html, err := executor.FetchHTML(ctx, detailURL)
	if err != nil {
		return nil, nil, err
	}

	doc, err := ParseDocument([]byte(html))
	if err != nil {
		return nil, nil, err
	}

	return doc, base, nil
}
