package downloader

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"comicscrape/models"
	"comicscrape/parser"
)

// SiteOptions are the per-run values a site plugin needs to build records.
type SiteOptions struct {
	Series     string
	Publisher  string
	IssueLabel string // text preceding "n. <digits>" in the issue block
	DateLocale string // e.g. "it_IT"
	Dates      parser.DateParser
}

// SitePlugin defines the interface that every catalog site must implement.
// Sites provide ONLY extraction logic - the downloader handles ALL execution.
type SitePlugin interface {
	// GetSiteName returns the site identifier (e.g., "diabolik")
	GetSiteName() string

	// EnumerateCatalog returns the catalog entries in document order.
	// Entries without a title or a link are skipped.
	EnumerateCatalog(doc *goquery.Document, base *url.URL) []models.CatalogItem

	// ExtractRecord builds the record of a detail page. It never fails:
	// anything missing is left absent in the returned fields.
	ExtractRecord(doc *goquery.Document) models.ComicRecord

	// LocateCovers returns the absolute, deduplicated cover candidates of a
	// detail page whose URL matches pattern.
	LocateCovers(doc *goquery.Document, base *url.URL, pattern *regexp.Regexp) []models.ImageCandidate
}
