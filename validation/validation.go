package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidateCatalogURL checks that raw is an absolute http(s) URL with a host.
func ValidateCatalogURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("catalog URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("catalog URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("catalog URL has no host")
	}
	return nil
}

// ValidateSeries checks that series can be used as a single directory name.
func ValidateSeries(series string) error {
	if strings.TrimSpace(series) == "" {
		return errors.New("series name is required")
	}
	if strings.ContainsAny(series, `/\`) {
		return errors.New("series name must not contain path separators")
	}
	if series == "." || series == ".." {
		return fmt.Errorf("series name %q is not a valid directory name", series)
	}
	return nil
}

// ValidateRunInputs checks the user-supplied inputs of a run before any
// directory is created or request is made.
// It only works with raw values, so the prompt and the flags share it.
func ValidateRunInputs(catalogURL, series string) error {
	if err := ValidateCatalogURL(catalogURL); err != nil {
		return err
	}
	return ValidateSeries(series)
}
