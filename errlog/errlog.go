package errlog

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the name of the error log written inside the series directory.
const FileName = "error_log.txt"

// Log collects every failure of a run, in order.
// Entries are kept in memory for the end-of-run report and appended to a
// plain-text file, one line per entry. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []string
	file    io.WriteCloser
	logger  *log.Logger
}

// Open creates (or appends to) the error log file inside dir.
func Open(dir string) (*Log, error) {
	logPath := filepath.Join(dir, FileName)

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}

	return New(file), nil
}

// New returns a Log writing to w. A nil w keeps entries in memory only.
func New(w io.WriteCloser) *Log {
	l := &Log{file: w}
	if w != nil {
		l.logger = log.New(w, "ERROR:root:", 0)
	}
	return l
}

// Record appends message to the log and echoes it at error level.
func (l *Log) Record(message string, attrs ...any) {
	l.mu.Lock()
	l.entries = append(l.entries, message)
	if l.logger != nil {
		l.logger.Println(message)
	}
	l.mu.Unlock()

	slog.Error(message, attrs...)
}

// Recordf is Record with fmt.Sprintf formatting.
func (l *Log) Recordf(format string, args ...any) {
	l.Record(fmt.Sprintf(format, args...))
}

// Entries returns a copy of every recorded message, oldest first.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close closes the underlying file, if any.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.logger = nil
	return err
}
