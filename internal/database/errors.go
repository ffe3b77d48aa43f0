package database

import "errors"

var (
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a URL using a short code that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
	// ErrInvalidShortCode is returned when a short code fails Base62 format
	// validation, before any store round-trip is made.
	ErrInvalidShortCode = errors.New("invalid short code")
)
