package sink

import "comicscrape/models"

// RecordSink receives records in catalog order.
type RecordSink interface {
	Write(record models.ComicRecord) error
	Close() error
}
