package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fashioncompare/backend/internal/domain"
)

// Selector candidates per field, tried in priority order: semantic microdata
// attributes first, then class/data-attribute heuristics, then generic tags.
var (
	titleSelectors = []string{
		`[itemprop="name"]`,
		`.product-title`,
		`.product-name`,
		`h1`,
		`[data-product-title]`,
		`[class*="product"][class*="title"]`,
		`[class*="product"][class*="name"]`,
	}
	priceSelectors = []string{
		`[itemprop="price"]`,
		`.product-price`,
		`.price`,
		`[data-price]`,
		`[class*="product"][class*="price"]`,
		`.current-price`,
		`[data-product-price]`,
	}
	imageSelectors = []string{
		`[itemprop="image"]`,
		`.product-image img`,
		`.product-gallery img`,
		`[data-product-image]`,
		`[class*="product"][class*="image"] img`,
		`[class*="gallery"] img`,
	}
	descriptionSelectors = []string{
		`[itemprop="description"]`,
		`.product-description`,
		`[data-product-description]`,
		`[class*="product"][class*="description"]`,
		`#description`,
	}
	brandSelectors = []string{
		`[itemprop="brand"]`,
		`.product-brand`,
		`[data-brand]`,
		`[class*="product"][class*="brand"]`,
		`.brand`,
	}
)

// ExtractionService produces one validated product record per page view.
// Each field is resolved through an ordered source fallback: JSON-LD
// structured data, then field-specific meta tags, then selector candidates,
// with a <title> last resort for the title only.
type ExtractionService struct {
	log *zap.Logger
	now func() time.Time
}

// NewExtractionService creates an extraction service. A nil logger disables
// diagnostics.
func NewExtractionService(log *zap.Logger) *ExtractionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExtractionService{
		log: log,
		now: time.Now,
	}
}

// Extract resolves a product record from the page signals, or fails with
// ErrInvalidProduct when no valid record can be produced. Internal panics
// are converted to the error return; nothing escapes this boundary.
func (s *ExtractionService) Extract(ctx context.Context, doc domain.PageDocument) (p *domain.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("extraction panic", zap.Any("panic", r), zap.String("url", doc.URL()))
			p = nil
			err = fmt.Errorf("%w: %v", domain.ErrInvalidProduct, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ld := s.structuredData(doc)

	product := &domain.Product{
		URL:         doc.URL(),
		Timestamp:   s.now(),
		Title:       StripHTML(s.extractTitle(doc, ld)),
		Description: StripHTML(s.extractDescription(doc, ld)),
		Brand:       StripHTML(s.extractBrand(doc, ld)),
		Images:      s.extractImages(doc, ld),
		Metadata:    s.extractMetadata(doc, ld),
	}
	if price, ok := s.extractPrice(doc, ld); ok {
		product.Price = price
	}

	if err := product.Validate(); err != nil {
		s.log.Debug("extraction rejected",
			zap.String("url", product.URL),
			zap.String("title", product.Title),
			zap.Float64("price", product.Price))
		return nil, err
	}

	s.log.Debug("extracted product",
		zap.String("url", product.URL),
		zap.String("title", product.Title),
		zap.Float64("price", product.Price),
		zap.Int("images", len(product.Images)))

	return product, nil
}

// structuredData returns the first JSON-LD object declaring itself a
// Product, searching each script block and, inside array payloads, each
// element. Malformed blocks are skipped.
func (s *ExtractionService) structuredData(doc domain.PageDocument) map[string]any {
	for _, payload := range doc.JSONLD() {
		var data any
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			s.log.Debug("skipping malformed JSON-LD block", zap.Error(err))
			continue
		}
		switch v := data.(type) {
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok && obj["@type"] == "Product" {
					return obj
				}
			}
		case map[string]any:
			if v["@type"] == "Product" {
				return v
			}
		}
	}
	return nil
}

func (s *ExtractionService) extractTitle(doc domain.PageDocument, ld map[string]any) string {
	if name := ldString(ld, "name"); name != "" {
		return name
	}
	if title, ok := doc.MetaProperty("og:title"); ok {
		return title
	}
	for _, sel := range titleSelectors {
		if text, ok := doc.QueryText(sel); ok {
			return text
		}
	}
	// Last resort: page title up to the first "|" delimiter.
	title, _, _ := strings.Cut(doc.Title(), "|")
	return strings.TrimSpace(title)
}

func (s *ExtractionService) extractPrice(doc domain.PageDocument, ld map[string]any) (float64, bool) {
	if offers, ok := ld["offers"].(map[string]any); ok {
		if raw, ok := offers["price"]; ok && truthy(raw) {
			return NormalizePriceValue(raw)
		}
	}
	if amount, ok := doc.MetaProperty("product:price:amount"); ok {
		return NormalizePrice(amount)
	}
	// First matching element wins even if its text does not parse.
	for _, sel := range priceSelectors {
		if text, ok := doc.QueryText(sel); ok {
			return NormalizePrice(text)
		}
	}
	return 0, false
}

// extractImages is cumulative, not first-wins: every source contributes URLs
// into a set that preserves first-seen order, then the http(s) filter and
// query-string strip are applied.
func (s *ExtractionService) extractImages(doc domain.PageDocument, ld map[string]any) []string {
	seen := make(map[string]bool)
	var images []string
	add := func(url string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		images = append(images, url)
	}

	switch v := ld["image"].(type) {
	case string:
		add(v)
	case []any:
		for _, item := range v {
			if url, ok := item.(string); ok {
				add(url)
			}
		}
	}

	if url, ok := doc.MetaProperty("og:image"); ok {
		add(url)
	}

	for _, sel := range imageSelectors {
		for _, url := range doc.QueryAttrAll(sel, "src", "data-src") {
			add(url)
		}
	}

	var cleaned []string
	for _, url := range images {
		if !strings.HasPrefix(url, "http") {
			continue
		}
		base, _, _ := strings.Cut(url, "?")
		cleaned = append(cleaned, base)
	}
	return cleaned
}

func (s *ExtractionService) extractDescription(doc domain.PageDocument, ld map[string]any) string {
	if desc := ldString(ld, "description"); desc != "" {
		return desc
	}
	if desc, ok := doc.MetaProperty("og:description"); ok {
		return desc
	}
	for _, sel := range descriptionSelectors {
		if text, ok := doc.QueryText(sel); ok {
			return text
		}
	}
	return ""
}

func (s *ExtractionService) extractBrand(doc domain.PageDocument, ld map[string]any) string {
	if brand, ok := ld["brand"].(map[string]any); ok {
		if name := ldString(brand, "name"); name != "" {
			return name
		}
	}
	if brand, ok := doc.MetaProperty("product:brand"); ok {
		return brand
	}
	for _, sel := range brandSelectors {
		if text, ok := doc.QueryText(sel); ok {
			return text
		}
	}
	return ""
}

// extractMetadata merges selected JSON-LD fields with every product:* and
// og:* meta tag. Meta tags are applied last; the tag name after the final
// colon is the key.
func (s *ExtractionService) extractMetadata(doc domain.PageDocument, ld map[string]any) map[string]string {
	metadata := make(map[string]string)

	set := func(key string, value any) {
		if str, ok := value.(string); ok && str != "" {
			metadata[key] = str
		}
	}
	set("sku", ld["sku"])
	set("color", ld["color"])
	set("category", ld["category"])
	if offers, ok := ld["offers"].(map[string]any); ok {
		set("availability", offers["availability"])
		set("condition", offers["itemCondition"])
	}

	for _, tag := range doc.MetaTags("product:", "og:") {
		parts := strings.Split(tag.Property, ":")
		key := parts[len(parts)-1]
		metadata[key] = tag.Content
	}

	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

// ldString reads a non-empty string field from a JSON-LD object.
func ldString(ld map[string]any, key string) string {
	if s, ok := ld[key].(string); ok {
		return s
	}
	return ""
}

// truthy mirrors the presence checks applied to JSON-LD offer prices:
// empty strings and zero numbers do not count as a price signal.
func truthy(v any) bool {
	switch x := v.(type) {
	case string:
		return x != ""
	case float64:
		return x != 0
	case nil:
		return false
	default:
		return true
	}
}
