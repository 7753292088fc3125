package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Similarity SimilarityConfig
	Extraction ExtractionConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig holds product-store configuration
type StorageConfig struct {
	Backend    string        `mapstructure:"backend"` // "memory", "sqlite" or "redis"
	SQLitePath string        `mapstructure:"sqlite_path"`
	RedisURL   string        `mapstructure:"redis_url"`
	Key        string        `mapstructure:"key"`
	MaxItems   int           `mapstructure:"max_items"`
	Retention  time.Duration `mapstructure:"retention"`
}

// SimilarityConfig holds similarity-engine configuration
type SimilarityConfig struct {
	Threshold    float64       `mapstructure:"threshold"`
	MaxResults   int           `mapstructure:"max_results"`
	CandidateTTL time.Duration `mapstructure:"candidate_ttl"`
}

// ExtractionConfig holds page-fetch configuration
type ExtractionConfig struct {
	UserAgent    string        `mapstructure:"user_agent"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fashioncompare/")

	v.SetEnvPrefix("FASHIONCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Storage defaults
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite_path", "./fashioncompare.db")
	v.SetDefault("storage.key", "fashion_compare_data_v2")
	v.SetDefault("storage.max_items", 100)
	v.SetDefault("storage.retention", "720h") // 30 days

	// Similarity defaults
	v.SetDefault("similarity.threshold", 0.6)
	v.SetDefault("similarity.max_results", 5)
	v.SetDefault("similarity.candidate_ttl", "5m")

	// Extraction defaults
	v.SetDefault("extraction.user_agent", "FashionCompare/1.0")
	v.SetDefault("extraction.fetch_timeout", "30s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Storage.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("storage backend must be 'memory', 'sqlite' or 'redis', got: %s", config.Storage.Backend)
	}

	if config.Storage.Backend == "redis" && config.Storage.RedisURL == "" {
		return fmt.Errorf("redis URL is required when storage backend is 'redis'")
	}

	if config.Storage.Backend == "sqlite" && config.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required when storage backend is 'sqlite'")
	}

	if config.Similarity.Threshold <= 0 || config.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got: %v", config.Similarity.Threshold)
	}

	if config.Storage.MaxItems <= 0 {
		return fmt.Errorf("storage max_items must be positive, got: %d", config.Storage.MaxItems)
	}

	return nil
}
