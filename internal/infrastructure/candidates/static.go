// Package candidates supplies the candidate set the similarity engine
// ranks. A real candidate database does not exist yet; the static source is
// the stand-in until one does.
package candidates

import (
	"context"

	"github.com/fashioncompare/backend/internal/domain"
)

// StaticSource returns a fixed candidate set.
type StaticSource struct{}

// FetchCandidates returns the placeholder records.
func (StaticSource) FetchCandidates(ctx context.Context) ([]domain.Product, error) {
	return []domain.Product{
		{
			URL:   "https://example.com/products/blue-denim-jacket",
			Title: "Blue Denim Jacket",
			Price: 89.99,
		},
		{
			URL:   "https://shop.com/products/vintage-blue-jeans",
			Title: "Vintage Blue Jeans",
			Price: 79.99,
		},
	}, nil
}
