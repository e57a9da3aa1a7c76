package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldOr(t *testing.T) {
	require.Equal(t, "742", Found("742").Or(IssueNotAvailable))
	require.Equal(t, IssueNotAvailable, Missing().Or(IssueNotAvailable))
	require.Equal(t, IssueNotAvailable, Found("").Or(IssueNotAvailable))

	// a literal value equal to a sentinel is still a present value
	f := Found(TitleNotAvailable)
	require.True(t, f.Present)
}

func TestRowAlwaysHasSixColumns(t *testing.T) {
	row := ComicRecord{Series: "Diabolik", Publisher: "Astorina"}.Row()

	require.Len(t, row, len(CSVHeader))
	for i, v := range row {
		require.NotEmpty(t, v, "column %s", CSVHeader[i])
	}
	require.Equal(t, []string{TitleNotAvailable, PlotNotAvailable, DateNotAvailable, IssueNotAvailable, "Diabolik", "Astorina"}, row)
}

func TestItemResultOK(t *testing.T) {
	require.True(t, ItemResult{Record: &ComicRecord{}}.OK())
	require.False(t, ItemResult{}.OK())
	require.False(t, ItemResult{Record: &ComicRecord{}, Err: errTest}.OK())
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
