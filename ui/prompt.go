package ui

import (
	"io"

	input "github.com/tcnksm/go-input"

	"comicscrape/validation"
)

// Prompter asks the operator for the run inputs that were not given as arguments.
type Prompter struct {
	ui *input.UI
}

// NewPrompter reads from stdin and writes to stdout.
func NewPrompter() *Prompter {
	return &Prompter{ui: input.DefaultUI()}
}

// NewPrompterIO reads answers from r and writes questions to w.
func NewPrompterIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{ui: &input.UI{Reader: r, Writer: w}}
}

// AskCatalogURL asks for the catalog page until a valid URL is given.
func (p *Prompter) AskCatalogURL() (string, error) {
	return p.ui.Ask("Please enter the initial link where to start the scraping from", &input.Options{
		Required:     true,
		Loop:         true,
		HideOrder:    true,
		ValidateFunc: validation.ValidateCatalogURL,
	})
}

// AskSeries asks for the series name until a valid one is given.
func (p *Prompter) AskSeries() (string, error) {
	return p.ui.Ask("Please specify the series", &input.Options{
		Required:     true,
		Loop:         true,
		HideOrder:    true,
		ValidateFunc: validation.ValidateSeries,
	})
}

// AskBasePath asks where to save the series folder. An empty answer means
// the current directory.
func (p *Prompter) AskBasePath() (string, error) {
	return p.ui.Ask("Please specify the full path where you want to save the folder (Leave empty to save in the current directory)", &input.Options{
		HideOrder: true,
	})
}
