package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Package-level compiled regex patterns for performance
var (
	// First contiguous run of digits and decimal points. Currency symbols,
	// thousands separators and trailing text fall outside the run. This is
	// a deliberate simplification, not full currency parsing: "$1,299.00"
	// yields the run "1" and parses to 1.
	priceRunPattern = regexp.MustCompile(`[\d.]+`)

	// Longest valid decimal prefix of a run, so "1.2.3" parses to 1.2 and
	// "..5" parses to nothing.
	floatPrefixPattern = regexp.MustCompile(`^\d+(?:\.\d+)?|^\.\d+`)
)

// NormalizePrice extracts the first numeric run from raw and parses its
// leading decimal prefix. Returns false when no parseable number is found.
func NormalizePrice(raw string) (float64, bool) {
	run := priceRunPattern.FindString(raw)
	if run == "" {
		return 0, false
	}
	prefix := floatPrefixPattern.FindString(run)
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizePriceValue normalizes a price that may arrive as a string or a
// number. JSON-LD offer prices come in both shapes.
func NormalizePriceValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		return NormalizePrice(v)
	case float64:
		return NormalizePrice(strconv.FormatFloat(v, 'f', -1, 64))
	case json.Number:
		return NormalizePrice(v.String())
	default:
		return NormalizePrice(fmt.Sprint(v))
	}
}

// StripHTML renders raw as HTML and returns only the trimmed text content.
// Returns an empty string when nothing remains.
func StripHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(doc.Text())
}
