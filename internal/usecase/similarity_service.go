package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fashioncompare/backend/internal/domain"
)

// Scoring weights. Title overlap dominates; the same-domain penalty
// down-weights matches from the same retailer to favor cross-retailer
// comparisons.
const (
	titleWeight       = 0.6
	priceWeight       = 0.4
	sameDomainPenalty = 0.5
)

const candidateCacheKey = "similarity:candidates"

// SimilarityConfig holds configuration for the similarity service.
type SimilarityConfig struct {
	Threshold    float64       // minimum score for a match, default 0.6
	MaxResults   int           // result cap, default 5
	CandidateTTL time.Duration // candidate cache lifetime, default 5m
}

// SimilarityService scores stored candidate records against a query record
// and returns the top-ranked matches above the threshold. Candidates come
// from an injected source and are cached between requests.
type SimilarityService struct {
	threshold    float64
	maxResults   int
	candidateTTL time.Duration
	source       domain.CandidateSource
	cache        domain.CacheRepository
	log          *zap.Logger
}

// NewSimilarityService creates a similarity service with the given
// configuration. The cache may be nil to disable candidate caching.
func NewSimilarityService(config SimilarityConfig, source domain.CandidateSource, cache domain.CacheRepository, log *zap.Logger) *SimilarityService {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 0.6
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	ttl := config.CandidateTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SimilarityService{
		threshold:    threshold,
		maxResults:   maxResults,
		candidateTTL: ttl,
		source:       source,
		cache:        cache,
		log:          log,
	}
}

// Score computes the similarity of candidate to query in [0, 1].
//
// The price term divides by the query price only; the measure is asymmetric
// on purpose and covered by tests so it cannot drift. A candidate missing
// its title or price scores degenerately low rather than erroring; callers
// are expected to supply records that passed the extraction gate.
func (s *SimilarityService) Score(query, candidate domain.Product) float64 {
	titleSimilarity := tokenOverlap(
		strings.ToLower(query.Title),
		strings.ToLower(candidate.Title),
	)

	priceSimilarity := 1 - math.Abs(query.Price-candidate.Price)/query.Price

	penalty := 1.0
	if query.Domain() == candidate.Domain() {
		penalty = sameDomainPenalty
	}

	return clamp01((titleSimilarity*titleWeight + priceSimilarity*priceWeight) * penalty)
}

// FindSimilar returns the candidates scoring above the threshold, best
// first, capped at the result limit. Candidate-source failures yield an
// empty result, never an error.
func (s *SimilarityService) FindSimilar(ctx context.Context, query *domain.Product) ([]domain.Product, error) {
	if query == nil {
		return nil, domain.ErrInvalidCandidate
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		s.log.Warn("candidate fetch failed", zap.Error(err))
		return []domain.Product{}, nil
	}

	type scored struct {
		product domain.Product
		score   float64
	}
	var matches []scored
	for _, candidate := range candidates {
		if score := s.Score(*query, candidate); score > s.threshold {
			matches = append(matches, scored{product: candidate, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}

	results := make([]domain.Product, len(matches))
	for i, m := range matches {
		results[i] = m.product
	}

	s.log.Debug("similarity search",
		zap.String("query", query.Title),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(results)))

	return results, nil
}

// candidates returns the candidate set, served from the cache when fresh.
func (s *SimilarityService) candidates(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, candidateCacheKey); err == nil {
			return cached, nil
		}
	}

	candidates, err := s.source.FetchCandidates(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, candidateCacheKey, candidates, s.candidateTTL); err != nil {
			s.log.Warn("candidate cache write failed", zap.Error(err))
		}
	}
	return candidates, nil
}

// InvalidateCandidates drops the cached candidate set.
func (s *SimilarityService) InvalidateCandidates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, candidateCacheKey); err != nil {
		s.log.Warn("candidate cache invalidation failed", zap.Error(err))
	}
}

// tokenOverlap is the Jaccard-style text measure: shared token count over
// the larger of the two token sets. Tokens are whitespace-split words;
// duplicates collapse. Two empty strings score zero.
func tokenOverlap(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}

	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	larger := len(tokensA)
	if len(tokensB) > larger {
		larger = len(tokensB)
	}
	if larger == 0 {
		return 0
	}

	shared := 0
	for token := range tokensA {
		if tokensB[token] {
			shared++
		}
	}
	return float64(shared) / float64(larger)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
