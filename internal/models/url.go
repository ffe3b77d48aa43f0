package models

import "time"

// URL represents a stored mapping between a short code and its original URL.
type URL struct {
	// ID is the surrogate key assigned by the store on creation.
	ID int64
	// ShortCode is the Base62 encoding of ID. It is unique and immutable
	// once the record is created.
	ShortCode string
	// OriginalURL is the full-length URL the short code resolves to.
	OriginalURL string
	// VisitCount is the number of successful redirect lookups of the record.
	VisitCount int64
	// CreatedAt is the timestamp indicating when the mapping was created.
	CreatedAt time.Time
}
