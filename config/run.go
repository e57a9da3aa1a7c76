package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"comicscrape/errlog"
	"comicscrape/parser"
)

// Names of the files and directories created inside the series directory.
const (
	OutputFileName = "output.csv"
	CoversDirName  = "Covers"
)

// Run is everything one invocation needs: inputs, resolved paths, settings,
// and the error log. It is built once and handed to each pipeline stage.
type Run struct {
	CatalogURL string
	Series     string
	BasePath   string
	SeriesDir  string
	CoversDir  string
	Config     Config
	Errors     *errlog.Log
}

// NewRun resolves basePath (blank means the working directory), creates
// {basePath}/{series}/Covers and opens the error log inside the series directory.
func NewRun(cfg Config, catalogURL, series, basePath string) (*Run, error) {
	if basePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		basePath = wd
	}

	basePath, err := parser.ExpandPath(basePath)
	if err != nil {
		return nil, fmt.Errorf("cannot expand base path: %w", err)
	}

	seriesDir := filepath.Join(basePath, series)
	coversDir := filepath.Join(seriesDir, CoversDirName)

	if err := verifyDirectory(coversDir); err != nil {
		return nil, err
	}

	errorLog, err := errlog.Open(seriesDir)
	if err != nil {
		return nil, err
	}

	return &Run{
		CatalogURL: catalogURL,
		Series:     series,
		BasePath:   basePath,
		SeriesDir:  seriesDir,
		CoversDir:  coversDir,
		Config:     cfg,
		Errors:     errorLog,
	}, nil
}

// OutputPath is the CSV file of this run.
func (r *Run) OutputPath() string {
	return filepath.Join(r.SeriesDir, OutputFileName)
}

// Close releases the error log file.
func (r *Run) Close() error {
	return r.Errors.Close()
}

// check directory exists or create it
func verifyDirectory(dir string) error {
	info, err := os.Stat(dir)

	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
		slog.Debug("directory created", "path", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", dir)
	}

	slog.Debug("directory already exists", "path", dir)
	return nil
}
