package sites

import (
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"comicscrape/downloader"
	"comicscrape/models"
)

const catalogHTML = `<html><body>
<div class="grid">
  <div class="item-element">
    <a href="/commerce/prodotto/entry-a/"><img src="/thumb-a.jpg"></a>
    <div class="project-info"><h2>  Entry-A </h2></div>
  </div>
  <div class="item-element">
    <div class="project-info"><h2></h2></div>
    <a href="/commerce/prodotto/empty/">x</a>
  </div>
  <div class="item-element">
    <div class="project-info"><h2>No link here</h2></div>
  </div>
  <div class="item-element">
    <div class="project-info"><h2>Entry-B</h2></div>
    <a href="https://other.example.com/entry-b">B</a>
  </div>
  <div class="item-element">
    <p>no heading at all</p>
    <a href="/commerce/prodotto/ghost/">ghost</a>
  </div>
</div>
</body></html>`

const detailHTML = `<html><body>
<h1>Il ritorno di <br>Diabolik</h1>
<div class="description-content">
  <p><b>Numero:</b> Diabolik n. 742</p>
  <p>Formato: 13x18</p>
</div>
<div class="price-group"><span>€ 3,00</span></div>
<p>Un “colpo” perfetto,
   ma "Ginko" è sulle tracce.</p>
<p>Second paragraph.</p>
<div class="footer-item-right"><ul><li>12 marzo 2024</li><li>Astorina</li></ul></div>
<div class="port-details-thumb">
  <div class="port-details-thumb-item"><img src="/wp-content/uploads/2024/03/742.jpg"></div>
  <div class="port-details-thumb-item"><img src="https://www.diabolik.it/wp-content/uploads/2024/03/742.jpg"></div>
  <div class="port-details-thumb-item"><img data-src="/wp-content/uploads/2024/03/742-retro.jpg"></div>
  <div class="port-details-thumb-item"><img src="/static/logo.png"></div>
  <div class="port-details-thumb-item"><img></div>
</div>
</body></html>`

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newTestSite() *DiabolikSite {
	return NewDiabolikSite(downloader.SiteOptions{
		Series:    "Diabolik Inedito",
		Publisher: "Astorina",
	})
}

func TestEnumerateCatalog(t *testing.T) {
	site := newTestSite()
	items := site.EnumerateCatalog(mustDoc(t, catalogHTML), mustURL(t, "https://www.diabolik.it/diabolik-inedito/"))

	want := []models.CatalogItem{
		{Title: "Entry-A", DetailURL: "https://www.diabolik.it/commerce/prodotto/entry-a/"},
		{Title: "Entry-B", DetailURL: "https://other.example.com/entry-b"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("EnumerateCatalog() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerateCatalogEmptyPage(t *testing.T) {
	site := newTestSite()
	items := site.EnumerateCatalog(mustDoc(t, "<html><body><p>nothing</p></body></html>"), mustURL(t, "https://www.diabolik.it/"))
	require.Empty(t, items)
}

func TestExtractRecord(t *testing.T) {
	site := newTestSite()
	record := site.ExtractRecord(mustDoc(t, detailHTML))

	require.Equal(t, []string{
		"Il ritorno di Diabolik",
		"Un colpo perfetto, ma Ginko è sulle tracce.",
		"Mar 2024",
		"742",
		"Diabolik Inedito",
		"Astorina",
	}, record.Row())
}

func TestExtractRecordMissingIssueLabel(t *testing.T) {
	body := strings.Replace(detailHTML, "Diabolik n. 742", "Numero speciale 742", 1)

	record := newTestSite().ExtractRecord(mustDoc(t, body))

	require.False(t, record.IssueNumber.Present)
	require.Equal(t, models.IssueNotAvailable, record.Row()[3])
	require.Equal(t, "Il ritorno di Diabolik", record.Title.Value)
	require.True(t, record.Plot.Present)
	require.Equal(t, "Mar 2024", record.ReleaseDate.Value)
}

func TestExtractRecordIssueFallsBackToDescription(t *testing.T) {
	body := `<html><body>
<div class="description-content"><p>Trama.</p><p><b>Numero:</b> DIABOLIK n.15</p></div>
</body></html>`

	record := newTestSite().ExtractRecord(mustDoc(t, body))
	require.Equal(t, models.Found("15"), record.IssueNumber)
}

func TestExtractRecordPlotFollowsPriceGroup(t *testing.T) {
	body := `<html><body>
<p>Intro before the price.</p>
<div class="price-group">€ 3,00</div>
<div class="share"></div>
<p>La trama vera.</p>
</body></html>`

	record := newTestSite().ExtractRecord(mustDoc(t, body))
	require.Equal(t, models.Found("La trama vera."), record.Plot)

	record = newTestSite().ExtractRecord(mustDoc(t, `<html><body><div class="price-group">€ 3,00</div></body></html>`))
	require.False(t, record.Plot.Present)
}

func TestExtractRecordEmptyPage(t *testing.T) {
	record := newTestSite().ExtractRecord(mustDoc(t, "<html><body></body></html>"))

	require.Equal(t, []string{
		models.TitleNotAvailable,
		models.PlotNotAvailable,
		models.DateNotAvailable,
		models.IssueNotAvailable,
		"Diabolik Inedito",
		"Astorina",
	}, record.Row())
}

type fixedDates struct {
	t  time.Time
	ok bool
}

func (f fixedDates) ParseLocalDate(text, locale string) (time.Time, bool) {
	return f.t, f.ok
}

func TestExtractRecordUsesDateParser(t *testing.T) {
	site := NewDiabolikSite(downloader.SiteOptions{
		Dates: fixedDates{t: time.Date(1962, time.November, 1, 0, 0, 0, 0, time.UTC), ok: true},
	})
	record := site.ExtractRecord(mustDoc(t, detailHTML))
	require.Equal(t, "Nov 1962", record.ReleaseDate.Value)

	site = NewDiabolikSite(downloader.SiteOptions{Dates: fixedDates{}})
	record = site.ExtractRecord(mustDoc(t, detailHTML))
	require.False(t, record.ReleaseDate.Present)
}

func TestExtractRecordCustomIssueLabel(t *testing.T) {
	body := strings.Replace(detailHTML, "Diabolik n. 742", "Eva Kant n. 9", 1)
	site := NewDiabolikSite(downloader.SiteOptions{IssueLabel: "Eva Kant"})

	record := site.ExtractRecord(mustDoc(t, body))
	require.Equal(t, "9", record.IssueNumber.Value)
}

func TestLocateCovers(t *testing.T) {
	site := newTestSite()
	pattern := regexp.MustCompile(`/wp-content/uploads/`)

	covers := site.LocateCovers(mustDoc(t, detailHTML), mustURL(t, "https://www.diabolik.it/commerce/prodotto/entry-a/"), pattern)

	want := []models.ImageCandidate{
		{URL: "https://www.diabolik.it/wp-content/uploads/2024/03/742.jpg"},
		{URL: "https://www.diabolik.it/wp-content/uploads/2024/03/742-retro.jpg"},
	}
	if diff := cmp.Diff(want, covers); diff != "" {
		t.Errorf("LocateCovers() mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateCoversNoGallery(t *testing.T) {
	site := newTestSite()
	covers := site.LocateCovers(mustDoc(t, "<html><body><img src='/wp-content/uploads/a.jpg'></body></html>"), mustURL(t, "https://www.diabolik.it/"), regexp.MustCompile(`uploads`))
	require.Empty(t, covers)
}

func TestRegistry(t *testing.T) {
	require.Contains(t, Names(), "diabolik")

	plugin, err := New("diabolik", downloader.SiteOptions{})
	require.NoError(t, err)
	require.Equal(t, "diabolik", plugin.GetSiteName())

	_, err = New("nope", downloader.SiteOptions{})
	require.Error(t, err)
}
