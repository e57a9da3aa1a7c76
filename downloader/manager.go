package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"comicscrape/config"
	"comicscrape/models"
	"comicscrape/sink"
)

// SinkOpener creates a sink. Sinks are only opened once the catalog has been
// fetched, so a failed catalog fetch leaves no output files behind.
type SinkOpener func() (sink.RecordSink, error)

// ProgressCallback is called after each item is flushed
// Parameters: item title, items done, total items
type ProgressCallback func(string, int, int)

// RunSummary counts what a run produced.
type RunSummary struct {
	Items  int // catalog entries found
	Rows   int // records written
	Covers int // cover files saved
	Errors int // entries in the error log
}

// Manager orchestrates the entire scrape: catalog, details, covers, sinks.
type Manager struct {
	run      *config.Run
	site     SitePlugin
	client   *HTTPClient
	executor *RequestExecutor
	covers   *CoverDownloader
	pattern  *regexp.Regexp
	openers  []SinkOpener

	Progress ProgressCallback
}

// NewManager creates a new scrape manager
func NewManager(run *config.Run, site SitePlugin, client *HTTPClient, executor *RequestExecutor, openers ...SinkOpener) (*Manager, error) {
	pattern, err := regexp.Compile(run.Config.CoverPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid cover pattern: %w", err)
	}

	return &Manager{
		run:      run,
		site:     site,
		client:   client,
		executor: executor,
		covers:   NewCoverDownloader(client, run.CoversDir, run.Config.CoverWidth, run.Config.CoverHeight),
		pattern:  pattern,
		openers:  openers,
	}, nil
}

// Run executes the full scrape workflow.
// The returned error is run-fatal; item-local failures only land in the error log.
func (m *Manager) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{}
	defer func() { summary.Errors = m.run.Errors.Len() }()

	slog.Info("starting scrape", "site", m.site.GetSiteName(), "series", m.run.Series, "url", m.run.CatalogURL)

	// Step 1: Get all catalog entries
	items, err := FetchCatalogItems(ctx, m.client, m.site, m.run.CatalogURL)
	if err != nil {
		m.run.Errors.Record(fmt.Sprintf("Error occurred while fetching %s: %v", m.run.CatalogURL, err), "url", m.run.CatalogURL)
		return summary, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	summary.Items = len(items)

	if err := m.covers.CheckDir(); err != nil {
		return summary, err
	}

	// Step 2: Open the sinks
	sinks, err := m.openSinks()
	if err != nil {
		return summary, err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				m.run.Errors.Record(fmt.Sprintf("Error occurred while closing output: %v", err))
			}
		}
	}()

	// Step 3: Process every item, flushing results in catalog order
	results := m.process(ctx, items)

	next := 0
	pending := make(map[int]models.ItemResult)
	for res := range results {
		pending[res.Index] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			m.flush(r, sinks, summary)
			next++

			if m.Progress != nil {
				m.Progress(r.Item.Title, next, len(items))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted after %d of %d items: %w", next, len(items), err)
	}

	slog.Info("scrape complete", "items", summary.Items, "rows", summary.Rows, "covers", summary.Covers)
	return summary, nil
}

func (m *Manager) openSinks() ([]sink.RecordSink, error) {
	var sinks []sink.RecordSink
	for _, open := range m.openers {
		s, err := open()
		if err != nil {
			for _, opened := range sinks {
				opened.Close()
			}
			return nil, fmt.Errorf("failed to open output: %w", err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

// process schedules items on a bounded worker pool. Items are scheduled in
// catalog order and scheduling stops when ctx is cancelled, so the indices
// delivered on the channel always form a contiguous prefix.
func (m *Manager) process(ctx context.Context, items []models.CatalogItem) <-chan models.ItemResult {
	results := make(chan models.ItemResult)

	workers := m.run.Config.Workers
	if workers < 1 {
		workers = 1
	}

	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(workers)

		for i, item := range items {
			if ctx.Err() != nil {
				slog.Warn("cancelled, not scheduling remaining items", "remaining", len(items)-i)
				break
			}
			i, item := i, item
			g.Go(func() error {
				results <- m.processItem(ctx, i, item)
				return nil
			})
		}

		g.Wait()
	}()

	return results
}

// processItem fetches one detail page, extracts its record and downloads its covers.
func (m *Manager) processItem(ctx context.Context, index int, item models.CatalogItem) models.ItemResult {
	result := models.ItemResult{Index: index, Item: item}

	slog.Debug("processing item", "index", index, "title", item.Title, "url", item.DetailURL)

	doc, base, err := FetchDetail(ctx, m.executor, item.DetailURL)
	if err != nil {
		m.run.Errors.Record(fmt.Sprintf("Error occurred while fetching %s: %v", item.DetailURL, err), "url", item.DetailURL)
		result.Err = err
		return result
	}

	record := m.site.ExtractRecord(doc)
	result.Record = &record

	issue := record.IssueNumber.Or("unknown")

	for _, candidate := range m.site.LocateCovers(doc, base, m.pattern) {
		path, err := m.covers.Download(ctx, candidate, issue)
		if err != nil {
			m.run.Errors.Record(fmt.Sprintf("Error occurred while downloading image %s: %v", candidate.URL, err), "url", candidate.URL, "issue", issue)
			continue
		}
		if path != "" {
			result.Covers = append(result.Covers, path)
		}
	}

	return result
}

// flush writes one successful result to every sink.
func (m *Manager) flush(r models.ItemResult, sinks []sink.RecordSink, summary *RunSummary) {
	if !r.OK() {
		return
	}

	written := true
	for _, s := range sinks {
		if err := s.Write(*r.Record); err != nil {
			m.run.Errors.Record(fmt.Sprintf("Error occurred while writing record for %s: %v", r.Item.DetailURL, err), "url", r.Item.DetailURL)
			written = false
		}
	}
	if written {
		summary.Rows++
	}
	summary.Covers += len(r.Covers)
}
