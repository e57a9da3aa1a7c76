package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goodsign/monday"
)

// ReleaseDateLayout is the output format of release dates ("Mar 2024").
const ReleaseDateLayout = "Jan 2006"

// DateParser turns free text written in a given locale into a calendar date.
type DateParser interface {
	ParseLocalDate(text, locale string) (time.Time, bool)
}

// MondayParser parses localized month names with goodsign/monday.
type MondayParser struct{}

var _ DateParser = MondayParser{}

var (
	// optional day, month word, 4-digit year: "12 marzo 2024", "marzo 2024"
	wordDateRe = regexp.MustCompile(`(?i)(?:(\d{1,2})\s+)?(\p{L}+)\.?\s+(\d{4})`)
	// numeric day/month/year as printed on Italian pages
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\b`)
)

var (
	dayLayouts   = []string{"2 January 2006", "2 Jan 2006"}
	monthLayouts = []string{"January 2006", "Jan 2006"}
)

// ParseLocalDate finds the first date in text and parses it using locale
// (e.g. "it_IT"). The second return value is false when no date is found.
func (MondayParser) ParseLocalDate(text, locale string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		// time.Date normalizes 31/02 into March; treat that as no date
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() == day && t.Month() == time.Month(month) {
			return t, true
		}
		return time.Time{}, false
	}

	loc := monday.Locale(locale)
	for _, m := range wordDateRe.FindAllStringSubmatch(text, -1) {
		day, month, year := m[1], m[2], m[3]

		for _, name := range monthSpellings(month) {
			if day != "" {
				if t, ok := parseWithLayouts(dayLayouts, day+" "+name+" "+year, loc); ok {
					return t, true
				}
			}
			if t, ok := parseWithLayouts(monthLayouts, name+" "+year, loc); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func parseWithLayouts(layouts []string, value string, loc monday.Locale) (time.Time, bool) {
	for _, layout := range layouts {
		t, err := monday.Parse(layout, value, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// monthSpellings returns the lower-case and capitalized forms of a month word;
// locales differ in which one they print.
func monthSpellings(word string) []string {
	lower := strings.ToLower(word)
	r, size := utf8.DecodeRuneInString(lower)
	title := string(unicode.ToUpper(r)) + lower[size:]
	if title == lower {
		return []string{lower}
	}
	return []string{lower, title}
}

// FormatReleaseDate formats t as an abbreviated month and 4-digit year.
func FormatReleaseDate(t time.Time) string {
	return t.Format(ReleaseDateLayout)
}
