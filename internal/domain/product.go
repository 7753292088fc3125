package domain

import (
	"math"
	"net/url"
	"strings"
	"time"
)

// Product represents a single product record captured from an e-commerce page.
// A record is immutable once extracted; the store only stamps SavedTimestamp
// when it accepts the record.
type Product struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	Price          float64           `json:"price"`
	Images         []string          `json:"images,omitempty"`
	Description    string            `json:"description,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
	SavedTimestamp time.Time         `json:"savedTimestamp,omitzero"`
}

// Validate reports whether the record is complete enough to persist:
// non-empty title, positive finite price, http(s) URL.
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidProduct
	}
	if !(p.Price > 0) || math.IsInf(p.Price, 0) || math.IsNaN(p.Price) {
		return ErrInvalidProduct
	}
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidProduct
	}
	return nil
}

// Domain returns the host part of the product URL, or an empty string when
// the URL cannot be parsed. Used for the same-retailer similarity penalty.
func (p *Product) Domain() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
