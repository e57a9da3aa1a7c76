package parser

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ to the user's home directory, or returns the path as-is
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, strings.TrimPrefix(p[1:], "/")), nil
	}
	return p, nil
}

// URLFileName returns the last path segment of rawURL, ignoring query and fragment.
func URLFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		// fall back to a plain split, like a browser "save as" would
		trimmed := strings.TrimRight(rawURL, "/")
		return trimmed[strings.LastIndex(trimmed, "/")+1:]
	}
	return path.Base(u.Path)
}
