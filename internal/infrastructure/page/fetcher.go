package page

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/fashioncompare/backend/internal/domain"
)

// Fetcher retrieves a page over HTTP and parses it into a Document, for
// extract-by-URL requests where the caller has no captured markup.
type Fetcher struct {
	userAgent string
	timeout   time.Duration
	log       *zap.Logger
}

// NewFetcher creates a fetcher with the given user agent and timeout.
func NewFetcher(userAgent string, timeout time.Duration, log *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{userAgent: userAgent, timeout: timeout, log: log}
}

// Fetch downloads pageURL and returns it as a PageDocument. Any transport
// or HTTP failure maps to ErrPageFetch.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (domain.PageDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fresh collector per fetch: the visited-URL bookkeeping must not leak
	// between requests.
	collector := colly.NewCollector(colly.UserAgent(f.userAgent))
	collector.SetRequestTimeout(f.timeout)

	var body []byte
	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(pageURL); err != nil {
		f.log.Warn("page fetch rejected", zap.String("url", pageURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrPageFetch, err)
	}
	collector.Wait()

	if fetchErr != nil {
		f.log.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(fetchErr))
		return nil, fmt.Errorf("%w: %v", domain.ErrPageFetch, fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrPageFetch)
	}

	return NewDocument(pageURL, string(body))
}
