package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fashioncompare/backend/internal/domain"
	"github.com/fashioncompare/backend/internal/usecase"
)

// PageFetcher retrieves a page by URL when the caller has no captured markup.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (domain.PageDocument, error)
}

// DocumentParser builds a PageDocument from markup captured by the caller.
type DocumentParser func(pageURL, html string) (domain.PageDocument, error)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store      *usecase.ProductStore
	extractor  *usecase.ExtractionService
	similarity *usecase.SimilarityService
	fetcher    PageFetcher
	parse      DocumentParser
	log        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	store *usecase.ProductStore,
	extractor *usecase.ExtractionService,
	similarity *usecase.SimilarityService,
	fetcher PageFetcher,
	parse DocumentParser,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:      store,
		extractor:  extractor,
		similarity: similarity,
		fetcher:    fetcher,
		parse:      parse,
		log:        log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fashioncompare-backend",
		"version": "1.0.0",
	})
}

// SubmitProduct accepts an already-extracted product record from the
// extension and persists it.
func (h *Handler) SubmitProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed product payload"})
		return
	}

	if err := product.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product data"})
		return
	}

	if !h.store.Save(c.Request.Context(), &product) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"saved": true, "url": product.URL})
}

// ListProducts returns every stored record keyed by URL.
func (h *Handler) ListProducts(c *gin.Context) {
	products := h.store.GetAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// LookupProduct returns the record stored for the url query parameter.
func (h *Handler) LookupProduct(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}

	product := h.store.Get(c.Request.Context(), url)
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ClearProducts deletes every stored record.
func (h *Handler) ClearProducts(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.store.Clear(ctx) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
		return
	}
	h.similarity.InvalidateCandidates(ctx)
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// SimilarProducts ranks stored candidates against the query record in the
// request body.
func (h *Handler) SimilarProducts(c *gin.Context) {
	var query domain.Product
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed product payload"})
		return
	}

	if err := query.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product data"})
		return
	}

	products, err := h.similarity.FindSimilar(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid candidate data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

type extractRequest struct {
	URL  string `json:"url" binding:"required"`
	HTML string `json:"html"`
}

// ExtractProduct runs extraction over submitted markup, or fetches the page
// when only a URL is given. With save=true the result is persisted.
func (h *Handler) ExtractProduct(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	ctx := c.Request.Context()

	var doc domain.PageDocument
	var err error
	if req.HTML != "" {
		doc, err = h.parse(req.URL, req.HTML)
	} else {
		doc, err = h.fetcher.Fetch(ctx, req.URL)
	}
	if err != nil {
		h.log.Warn("page unavailable", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "page unavailable"})
		return
	}

	product, err := h.extractor.Extract(ctx, doc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product data"})
		return
	}

	saved := false
	if c.Query("save") == "true" {
		saved = h.store.Save(ctx, product)
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"saved":   saved,
	})
}
