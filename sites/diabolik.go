package sites

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"comicscrape/downloader"
	"comicscrape/models"
	"comicscrape/parser"
)

// Selectors of the diabolik.it WordPress theme.
const (
	catalogItemSelector  = "div.item-element"
	catalogTitleSelector = "div.project-info h2"
	catalogLinkSelector  = "a[href]"

	detailTitleSelector = "h1"
	descriptionSelector = "div.description-content"
	issueParaSelector   = "div.description-content p"
	priceGroupSelector  = "div.price-group"
	dateSelector        = "div.footer-item-right ul li"
	coverImageSelector  = ".port-details-thumb-item img"
)

// DiabolikSite implements the SitePlugin interface for diabolik.it
type DiabolikSite struct {
	opts    downloader.SiteOptions
	issueRe *regexp.Regexp
}

// Ensure DiabolikSite implements SitePlugin
var _ downloader.SitePlugin = (*DiabolikSite)(nil)

// NewDiabolikSite returns the plugin configured for one run.
func NewDiabolikSite(opts downloader.SiteOptions) *DiabolikSite {
	if opts.IssueLabel == "" {
		opts.IssueLabel = "Diabolik"
	}
	if opts.DateLocale == "" {
		opts.DateLocale = "it_IT"
	}
	if opts.Dates == nil {
		opts.Dates = parser.MondayParser{}
	}

	return &DiabolikSite{
		opts:    opts,
		issueRe: issuePattern(opts.IssueLabel),
	}
}

// issuePattern matches "<label> n. 123" and captures the digits.
func issuePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s+n\.\s*(\d+)`)
}

// GetSiteName returns the site identifier
func (d *DiabolikSite) GetSiteName() string {
	return "diabolik"
}

// EnumerateCatalog walks every item block of the catalog page in document order.
func (d *DiabolikSite) EnumerateCatalog(doc *goquery.Document, base *url.URL) []models.CatalogItem {
	var items []models.CatalogItem

	doc.Find(catalogItemSelector).Each(func(i int, s *goquery.Selection) {
		title := parser.CleanText(s.Find(catalogTitleSelector).First().Text())
		if title == "" {
			return
		}

		href, ok := s.Find(catalogLinkSelector).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			slog.Debug("catalog item has no link, skipping", "title", title)
			return
		}

		detailURL, err := resolve(base, href)
		if err != nil {
			slog.Debug("catalog item link is not a valid URL, skipping", "title", title, "href", href, "err", err)
			return
		}

		items = append(items, models.CatalogItem{Title: title, DetailURL: detailURL})
	})

	return items
}

// ExtractRecord runs the four field extractions independently.
func (d *DiabolikSite) ExtractRecord(doc *goquery.Document) models.ComicRecord {
	return models.ComicRecord{
		Title:       d.extractTitle(doc),
		Plot:        d.extractPlot(doc),
		ReleaseDate: d.extractDate(doc),
		IssueNumber: d.extractIssue(doc),
		Series:      d.opts.Series,
		Publisher:   d.opts.Publisher,
	}
}

func (d *DiabolikSite) extractTitle(doc *goquery.Document) models.Field {
	return models.Found(parser.CleanText(selectionText(doc.Find(detailTitleSelector).First())))
}

func (d *DiabolikSite) extractPlot(doc *goquery.Document) models.Field {
	// the plot is the first paragraph after the price block
	plot := doc.Find(priceGroupSelector).First().NextAllFiltered("p").First()
	text := selectionText(plot)
	return models.Found(parser.CleanText(parser.StripQuotes(text)))
}

func (d *DiabolikSite) extractIssue(doc *goquery.Document) models.Field {
	// "Numero: Diabolik n. 742" sits in the first paragraph of the description;
	// some pages move it further down the block.
	blocks := []*goquery.Selection{
		doc.Find(issueParaSelector).First(),
		doc.Find(descriptionSelector).First(),
	}
	for _, block := range blocks {
		if m := d.issueRe.FindStringSubmatch(parser.CleanText(selectionText(block))); m != nil {
			return models.Found(m[1])
		}
	}
	return models.Missing()
}

func (d *DiabolikSite) extractDate(doc *goquery.Document) models.Field {
	text := parser.CleanText(selectionText(doc.Find(dateSelector).First()))
	if text == "" {
		return models.Missing()
	}

	t, ok := d.opts.Dates.ParseLocalDate(text, d.opts.DateLocale)
	if !ok {
		slog.Debug("release date not recognized", "text", text)
		return models.Missing()
	}
	return models.Found(parser.FormatReleaseDate(t))
}

// LocateCovers collects cover images from the product gallery.
func (d *DiabolikSite) LocateCovers(doc *goquery.Document, base *url.URL, pattern *regexp.Regexp) []models.ImageCandidate {
	var candidates []models.ImageCandidate
	seen := make(map[string]bool)

	doc.Find(coverImageSelector).Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" {
			return
		}

		imageURL, err := resolve(base, src)
		if err != nil {
			slog.Debug("cover source is not a valid URL", "src", src, "err", err)
			return
		}
		if pattern != nil && !pattern.MatchString(imageURL) {
			return
		}
		if seen[imageURL] {
			return
		}
		seen[imageURL] = true

		candidates = append(candidates, models.ImageCandidate{URL: imageURL})
	})

	return candidates
}

// selectionText returns the text of the first node of s, with <br> as a space.
func selectionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return parser.NodeText(s.Nodes[0])
}

func resolve(base *url.URL, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String(), nil
}
