package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/fashioncompare/backend/config"
	httpDelivery "github.com/fashioncompare/backend/internal/delivery/http"
	"github.com/fashioncompare/backend/internal/domain"
	"github.com/fashioncompare/backend/internal/infrastructure/cache"
	"github.com/fashioncompare/backend/internal/infrastructure/candidates"
	"github.com/fashioncompare/backend/internal/infrastructure/page"
	"github.com/fashioncompare/backend/internal/infrastructure/storage"
	"github.com/fashioncompare/backend/internal/logger"
	"github.com/fashioncompare/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting fashioncompare backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	// Initialize the key-value backend for the product store
	kv, closer, err := newKeyValueStore(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize storage backend", zap.Error(err))
	}
	if closer != nil {
		defer closer.Close()
	}

	// Initialize usecase layer
	store := usecase.NewProductStore(kv, usecase.StoreConfig{
		Key:       cfg.Storage.Key,
		MaxItems:  cfg.Storage.MaxItems,
		Retention: cfg.Storage.Retention,
	}, zlog)

	extractor := usecase.NewExtractionService(zlog)

	similarity := usecase.NewSimilarityService(usecase.SimilarityConfig{
		Threshold:    cfg.Similarity.Threshold,
		MaxResults:   cfg.Similarity.MaxResults,
		CandidateTTL: cfg.Similarity.CandidateTTL,
	}, candidates.StaticSource{}, cache.NewMemoryCache(), zlog)

	fetcher := page.NewFetcher(cfg.Extraction.UserAgent, cfg.Extraction.FetchTimeout, zlog)
	parse := func(pageURL, html string) (domain.PageDocument, error) {
		return page.NewDocument(pageURL, html)
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(store, extractor, similarity, fetcher, parse, zlog)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

// newKeyValueStore builds the configured blob backend. The returned closer is
// nil for the in-memory backend.
func newKeyValueStore(cfg *config.Config) (domain.KeyValueStore, io.Closer, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		s, err := storage.NewRedisStore(cfg.Storage.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		return s, s, nil
	default:
		return storage.NewMemoryStore(), nil, nil
	}
}
