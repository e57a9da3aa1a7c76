package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"comicscrape/parser"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "~/.config/comicscrape/config.json5"

// Fetch modes for detail pages.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds every site constant that may need changing without a rebuild.
type Config struct {
	Site           string `json:"site"`            // registered site plugin name
	Publisher      string `json:"publisher"`       // written to every row
	UserAgent      string `json:"user_agent"`      // spoofed browser identity
	AcceptLanguage string `json:"accept_language"` // sent with every request
	DateLocale     string `json:"date_locale"`     // locale of release-date text
	IssueLabel     string `json:"issue_label"`     // label preceding "n. <digits>"
	CoverPattern   string `json:"cover_pattern"`   // regexp a cover URL must match
	CoverWidth     int    `json:"cover_width"`     // exact accepted cover width
	CoverHeight    int    `json:"cover_height"`    // exact accepted cover height
	Workers        int    `json:"workers"`         // items processed in parallel
	FetchMode      string `json:"fetch_mode"`      // "http" or "browser"
	TimeoutSeconds int    `json:"timeout_seconds"` // per request
	Database       string `json:"database"`        // optional SQLite sink path
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() Config {
	return Config{
		Site:           "diabolik",
		Publisher:      "Astorina",
		AcceptLanguage: "it-IT,it;q=0.9,en;q=0.8",
		DateLocale:     "it_IT",
		IssueLabel:     "Diabolik",
		CoverPattern:   `/wp-content/uploads/`,
		CoverWidth:     603,
		CoverHeight:    853,
		Workers:        1,
		FetchMode:      FetchModeHTTP,
		TimeoutSeconds: 30,
	}
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.Site == "" {
		return errors.New("site is required")
	}
	if c.CoverWidth <= 0 || c.CoverHeight <= 0 {
		return fmt.Errorf("cover size must be positive, got %dx%d", c.CoverWidth, c.CoverHeight)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", c.TimeoutSeconds)
	}
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return fmt.Errorf("unknown fetch mode: %s", c.FetchMode)
	}
	if _, err := regexp.Compile(c.CoverPattern); err != nil {
		return fmt.Errorf("invalid cover_pattern: %w", err)
	}
	return nil
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// Load reads the configuration at path on top of Defaults.
// The following files are merged, later ones taking priority:
//  1. <name>.<ext>
//  2. <name>.local.<ext>
//
// Missing files are not an error.
func Load(path string) (Config, error) {
	out := Defaults()

	if path == "" {
		path = DefaultConfigPath
	}
	name, err := parser.ExpandPath(path)
	if err != nil {
		return out, fmt.Errorf("cannot expand config path: %w", err)
	}

	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))
	localName := filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext))

	for _, file := range []string{name, localName} {
		override, found, err := readFile(file)
		if err != nil {
			return out, err
		}
		if !found {
			continue
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("error merging config %s: %w", file, err)
		}
		slog.Info("loaded config", "path", file)
	}

	return out, out.Validate()
}

func readFile(name string) (Config, bool, error) {
	var cfg Config

	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("error reading config %s: %w", name, err)
	}
	if len(data) == 0 {
		return cfg, false, nil
	}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, false, fmt.Errorf("error parsing config %s: %w", name, err)
	}
	return cfg, true, nil
}
