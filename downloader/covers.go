package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"comicscrape/models"
	"comicscrape/parser"
)

// CoverDownloader fetches cover candidates and keeps only those of the
// expected pixel size.
type CoverDownloader struct {
	client *HTTPClient
	dir    string
	width  int
	height int
}

// NewCoverDownloader writes accepted covers into dir.
func NewCoverDownloader(client *HTTPClient, dir string, width, height int) *CoverDownloader {
	return &CoverDownloader{
		client: client,
		dir:    dir,
		width:  width,
		height: height,
	}
}

// CoverFileName is the name an accepted cover is saved under: {issue}_{lastPathSegment}.
func CoverFileName(issue, imageURL string) (string, error) {
	name := parser.URLFileName(imageURL)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("cannot derive a file name from %s", imageURL)
	}
	return fmt.Sprintf("%s_%s", issue, name), nil
}

// Download fetches one candidate and writes it when its size matches.
// It returns the written path, or "" when the image was skipped for its size.
func (d *CoverDownloader) Download(ctx context.Context, candidate models.ImageCandidate, issue string) (string, error) {
	fileName, err := CoverFileName(issue, candidate.URL)
	if err != nil {
		return "", err
	}

	data, err := d.client.FetchBytes(ctx, candidate.URL)
	if err != nil {
		return "", err
	}

	info, err := parser.InspectImage(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if !info.Matches(d.width, d.height) {
		slog.Info("skipping image with unexpected size", "url", candidate.URL, "image", info.String(), "want_width", d.width, "want_height", d.height)
		return "", nil
	}

	target := filepath.Join(d.dir, fileName)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write cover: %w", err)
	}

	slog.Debug("saved cover", "path", target, "issue", issue)
	return target, nil
}

// ErrNoCoverDir is returned when the covers directory is missing.
var ErrNoCoverDir = errors.New("covers directory does not exist")

// CheckDir verifies the covers directory before any download is attempted.
func (d *CoverDownloader) CheckDir() error {
	info, err := os.Stat(d.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoCoverDir, d.dir)
	}
	return nil
}
