package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultEnv                    = "development"
	defaultHTTPHost               = "0.0.0.0"
	defaultHTTPPort               = 8080
	defaultGroupConfigPath        = "config/group.yaml"
	defaultUpstreamTimeoutSeconds = 10
	defaultRedisDB                = 0
	defaultCacheTTLSeconds        = 30
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env     string
	HTTP    HTTPConfig
	Catalog CatalogConfig
	Chain   UpstreamConfig
	History UpstreamConfig
	Redis   RedisConfig
	Cache   CacheConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// CatalogConfig points at the group configuration file.
type CatalogConfig struct {
	GroupConfigPath string
}

// UpstreamConfig holds the base URL and timeout for one upstream service.
// Each upstream carries an independent timeout so a slow historical query
// never stalls a live-order read.
type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// RedisConfig stores Redis connection parameters. An empty Addr disables
// the candle response cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// Load builds Config from environment variables, reading a .env file
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	chainURL := os.Getenv("CHAIN_READER_URL")
	if chainURL == "" {
		return nil, errors.New("CHAIN_READER_URL is required")
	}
	historyURL := os.Getenv("HISTORY_BASE_URL")
	if historyURL == "" {
		return nil, errors.New("HISTORY_BASE_URL is required")
	}

	chainTimeout, err := getInt("CHAIN_TIMEOUT_SECONDS", defaultUpstreamTimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CHAIN_TIMEOUT_SECONDS: %w", err)
	}
	historyTimeout, err := getInt("HISTORY_TIMEOUT_SECONDS", defaultUpstreamTimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse HISTORY_TIMEOUT_SECONDS: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	return &Config{
		Env:  getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{Host: host, Port: port},
		Catalog: CatalogConfig{
			GroupConfigPath: getString("GROUP_CONFIG_PATH", defaultGroupConfigPath),
		},
		Chain: UpstreamConfig{
			BaseURL:        chainURL,
			TimeoutSeconds: chainTimeout,
		},
		History: UpstreamConfig{
			BaseURL:        historyURL,
			TimeoutSeconds: historyTimeout,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}
