package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"comicscrape/downloader"
)

// SuccessLine is printed when a run recorded no errors.
const SuccessLine = "Script executed without errors."

// NewTable returns a rounded table writing to w.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if w == nil {
		w = os.Stdout
	}
	t.SetOutputMirror(w)
	return t
}

// PrintReport prints the end-of-run report: a summary, then every error
// verbatim, or the success line when there were none.
func PrintReport(w io.Writer, summary *downloader.RunSummary, errors []string) {
	if summary != nil {
		t := NewTable(w)
		t.AppendHeader(table.Row{"Items", "Rows", "Covers", "Errors"})
		t.AppendRow(table.Row{summary.Items, summary.Rows, summary.Covers, len(errors)})
		t.Render()
	}

	if len(errors) == 0 {
		fmt.Fprintf(w, "\n%s\n", SuccessLine)
		return
	}

	fmt.Fprintln(w, "\nErrors occurred during the execution of the script:")
	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "Error"})
	for i, e := range errors {
		t.AppendRow(table.Row{i + 1, e})
	}
	t.Render()
}
