package domain

import (
	"context"
	"time"
)

// KeyValueStore is the host-provided storage API the product store runs on.
// Values are opaque blobs; the store owns a single reserved key whose value
// is the entire serialized product map. A missing key yields (nil, nil).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MetaTag is a single page-level meta tag in document order.
type MetaTag struct {
	Property string
	Content  string
}

// PageDocument exposes the page signals the extractor resolves against,
// so extraction logic stays testable without a real page.
type PageDocument interface {
	// URL returns the canonical page location.
	URL() string
	// Title returns the text of the page's <title> element.
	Title() string
	// JSONLD returns the raw payloads of every ld+json script block,
	// in document order.
	JSONLD() []string
	// MetaProperty returns the content of the first meta tag with the
	// given property attribute. Empty content reports false.
	MetaProperty(property string) (string, bool)
	// MetaTags returns every meta tag whose property starts with one of
	// the prefixes, in document order.
	MetaTags(prefixes ...string) []MetaTag
	// QueryText returns the trimmed text of the first element matching
	// the CSS selector. The boolean reports whether an element matched,
	// even if its text is empty.
	QueryText(selector string) (string, bool)
	// QueryAttrAll returns, for every element matching the selector, the
	// first non-empty value among the given attributes.
	QueryAttrAll(selector string, attrs ...string) []string
}

// CandidateSource supplies the candidate set the similarity engine ranks.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]Product, error)
}

// CacheRepository caches candidate sets between similarity requests.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]Product, error)
	Set(ctx context.Context, key string, products []Product, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
