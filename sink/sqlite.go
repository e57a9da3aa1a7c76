package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"comicscrape/models"
)

//go:embed schema.sql
var Schema string

const insertComic = `insert into comics (title, plot, release_date, issue, series, publisher, scraped_at)
values (?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink mirrors the CSV rows into a SQLite table, so several runs can
// be queried together.
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

var _ RecordSink = (*SQLiteSink)(nil)

// NewSQLiteSink opens (or creates) the database at path and applies the schema.
func NewSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteSink{db: db, now: time.Now}, nil
}

// Write inserts one record with sentinels applied, exactly as in the CSV.
func (s *SQLiteSink) Write(record models.ComicRecord) error {
	row := record.Row()
	_, err := s.db.Exec(insertComic, row[0], row[1], row[2], row[3], row[4], row[5], s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Count returns the number of stored records of series.
func (s *SQLiteSink) Count(ctx context.Context, series string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from comics where series = ?`, series).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
