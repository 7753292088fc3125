package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fashioncompare/backend/internal/domain"
)

// Document exposes a parsed HTML page as the signal surface the extractor
// resolves against.
type Document struct {
	url string
	doc *goquery.Document
}

// NewDocument parses html captured at pageURL.
func NewDocument(pageURL, html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{url: pageURL, doc: doc}, nil
}

// URL returns the page location.
func (d *Document) URL() string { return d.url }

// Title returns the text of the page's <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// JSONLD returns the raw payload of every ld+json script block in
// document order.
func (d *Document) JSONLD() []string {
	var payloads []string
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		payloads = append(payloads, s.Text())
	})
	return payloads
}

// MetaProperty returns the content of the first meta tag with the given
// property. Tags with empty content report false so fallback continues.
func (d *Document) MetaProperty(property string) (string, bool) {
	sel := d.doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First()
	if sel.Length() == 0 {
		return "", false
	}
	content, ok := sel.Attr("content")
	if !ok || content == "" {
		return "", false
	}
	return content, true
}

// MetaTags returns every meta tag whose property attribute starts with one
// of the prefixes, in document order.
func (d *Document) MetaTags(prefixes ...string) []domain.MetaTag {
	var tags []domain.MetaTag
	d.doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		property, _ := s.Attr("property")
		for _, prefix := range prefixes {
			if strings.HasPrefix(property, prefix) {
				content, _ := s.Attr("content")
				tags = append(tags, domain.MetaTag{Property: property, Content: content})
				return
			}
		}
	})
	return tags
}

// QueryText returns the trimmed text of the first element matching the CSS
// selector. The boolean reports a match even when the text is empty.
func (d *Document) QueryText(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// QueryAttrAll returns, for every element matching the selector, the first
// non-empty value among attrs.
func (d *Document) QueryAttrAll(selector string, attrs ...string) []string {
	var values []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		for _, attr := range attrs {
			if value, ok := s.Attr(attr); ok && value != "" {
				values = append(values, value)
				return
			}
		}
	})
	return values
}
