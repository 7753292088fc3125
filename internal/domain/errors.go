package domain

import "errors"

var (
	// ErrInvalidProduct is returned when an extracted record fails the
	// title/price/url validation gate
	ErrInvalidProduct = errors.New("invalid product data")

	// ErrInvalidCandidate is returned when a similarity query is missing
	ErrInvalidCandidate = errors.New("invalid candidate data")

	// ErrStorageRead is returned when the key-value backend rejects a read
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageWrite is returned when the key-value backend rejects a write
	ErrStorageWrite = errors.New("storage write failed")

	// ErrCacheMiss is returned when data is not found in the candidate cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPageFetch is returned when a page cannot be retrieved
	ErrPageFetch = errors.New("page fetch failed")

	// ErrNoStructuredData is returned when a page carries no usable
	// Product JSON-LD block
	ErrNoStructuredData = errors.New("no product structured data")
)
