package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"comicscrape/downloader"
)

func TestPrintReportSuccess(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, &downloader.RunSummary{Items: 2, Rows: 2, Covers: 3}, nil)

	out := buf.String()
	require.Contains(t, out, SuccessLine)
	require.NotContains(t, out, "Errors occurred")
}

func TestPrintReportErrors(t *testing.T) {
	errs := []string{
		"Error occurred while fetching https://example.com/entry-b: timeout",
		"Error occurred while downloading image https://example.com/a.jpg: EOF",
	}

	var buf bytes.Buffer
	PrintReport(&buf, nil, errs)

	out := buf.String()
	require.NotContains(t, out, SuccessLine)
	for _, e := range errs {
		require.Contains(t, out, e)
	}
	require.Less(t, strings.Index(out, errs[0]), strings.Index(out, errs[1]))
}

func TestPrompterReadsAnswers(t *testing.T) {
	ask := func(answer string) *Prompter {
		return NewPrompterIO(strings.NewReader(answer+"\n"), &bytes.Buffer{})
	}

	url, err := ask("https://www.diabolik.it/inediti/").AskCatalogURL()
	require.NoError(t, err)
	require.Equal(t, "https://www.diabolik.it/inediti/", url)

	series, err := ask("Diabolik").AskSeries()
	require.NoError(t, err)
	require.Equal(t, "Diabolik", series)

	base, err := ask("~/fumetti").AskBasePath()
	require.NoError(t, err)
	require.Equal(t, "~/fumetti", base)
}
