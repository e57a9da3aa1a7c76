package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"comicscrape/models"
)

// utf8BOM precedes the header row.
const utf8BOM = "\ufeff"

// CSVSink writes records to a UTF-8 CSV file with a byte order mark.
type CSVSink struct {
	file *os.File
	w    *csv.Writer
	rows int
}

var _ RecordSink = (*CSVSink)(nil)

// NewCSVSink creates (or truncates) path and writes the header row.
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := file.WriteString(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	s := &CSVSink{file: file, w: csv.NewWriter(file)}
	if err := s.writeRow(models.CSVHeader); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// Write appends one row. Rows are flushed immediately so an interrupted run
// keeps everything written so far.
func (s *CSVSink) Write(record models.ComicRecord) error {
	if err := s.writeRow(record.Row()); err != nil {
		return err
	}
	s.rows++
	return nil
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

// Rows returns the number of data rows written.
func (s *CSVSink) Rows() int {
	return s.rows
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	if s.file == nil {
		return nil
	}
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
