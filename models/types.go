package models

// Sentinels written in place of values the detail page did not provide.
const (
	TitleNotAvailable = "Title not available"
	PlotNotAvailable  = "Plot not available"
	DateNotAvailable  = "Date not available"
	IssueNotAvailable = "Issue number not available"
)

// CSVHeader is the fixed column order of every record sink.
var CSVHeader = []string{"Title", "Plot", "Date", "Issue", "Series", "Publisher"}

// CatalogItem is one entry of the catalog page.
// It only lives until its detail page has been fetched.
type CatalogItem struct {
	Title     string `json:"title"`      // Heading text shown on the catalog page
	DetailURL string `json:"detail_url"` // Absolute link to the item's own page
}

// Field is a value extracted from a page that may be missing.
// Missing values are only turned into sentinels when a record is serialized,
// so callers can tell "not available" apart from a literal string.
type Field struct {
	Value   string
	Present bool
}

// Found returns a present Field, or an absent one when value is empty.
func Found(value string) Field {
	if value == "" {
		return Field{}
	}
	return Field{Value: value, Present: true}
}

// Missing returns an absent Field.
func Missing() Field {
	return Field{}
}

// Or returns the value, or sentinel when the field is absent.
func (f Field) Or(sentinel string) string {
	if !f.Present {
		return sentinel
	}
	return f.Value
}

// ComicRecord is the unit of output: one per detail page that was reached.
type ComicRecord struct {
	Title       Field
	Plot        Field
	ReleaseDate Field // already formatted as "Jan 2006"
	IssueNumber Field
	Series      string
	Publisher   string
}

// Row renders the record in CSVHeader order with sentinels applied.
func (r ComicRecord) Row() []string {
	return []string{
		r.Title.Or(TitleNotAvailable),
		r.Plot.Or(PlotNotAvailable),
		r.ReleaseDate.Or(DateNotAvailable),
		r.IssueNumber.Or(IssueNotAvailable),
		r.Series,
		r.Publisher,
	}
}

// ImageCandidate is a possible cover image found on a detail page.
type ImageCandidate struct {
	URL string
}

// ItemResult is the outcome of processing one CatalogItem.
// Exactly one of Record or Err is set.
type ItemResult struct {
	Index  int
	Item   CatalogItem
	Record *ComicRecord
	Covers []string // paths of cover files written to disk
	Err    error
}

// OK reports whether the item produced a record.
func (r ItemResult) OK() bool {
	return r.Err == nil && r.Record != nil
}
