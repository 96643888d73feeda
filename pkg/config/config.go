// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Catalog, Indexer, Search, Server, Redis, Kafka, Postgres, etc.).
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	Search      SearchConfig      `yaml:"search"`
	Server      ServerConfig      `yaml:"server"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	Admin       AdminConfig       `yaml:"admin"`
	Pins        PinsConfig        `yaml:"pins"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// Catalog source formats.
const (
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// CatalogConfig points at the documentation source the record store is
// loaded from.
type CatalogConfig struct {
	Path             string `yaml:"path"`
	Format           string `yaml:"format"`
	DefaultCategory  string `yaml:"defaultCategory"`
	StrictCategories bool   `yaml:"strictCategories"`
}

// WeightsConfig holds the per-field relevance weights used by the index
// builder.
type WeightsConfig struct {
	Name        float64 `yaml:"name_weight"`
	Option      float64 `yaml:"option_weight"`
	Category    float64 `yaml:"category_weight"`
	Description float64 `yaml:"description_weight"`
}

// IndexerConfig controls index construction and the on-disk snapshot cache.
// An empty CacheDir disables the cache.
type IndexerConfig struct {
	Weights  WeightsConfig `yaml:"weights"`
	CacheDir string        `yaml:"cacheDir"`
}

// SearchConfig controls query execution limits.
type SearchConfig struct {
	MaxResults   int `yaml:"maxResults"`
	DefaultLimit int `yaml:"defaultLimit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RateLimit       int           `yaml:"rateLimit"`
	RateWindow      time.Duration `yaml:"rateWindow"`
}

// PostgresConfig holds PostgreSQL connection parameters for the analytics
// snapshot store. An empty Host disables persistence.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. No brokers means
// search events are aggregated in-process only.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents string `yaml:"searchEvents"`
}

// RedisConfig holds Redis connection and caching parameters. An empty Addr
// disables the shared query cache.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`
	KeyPrefix string        `yaml:"keyPrefix"`
}

// AdminConfig controls how admin mode is granted.
type AdminConfig struct {
	TokenFile string `yaml:"tokenFile"`
	Token     string `yaml:"token"`
}

// PinsConfig locates the pinned-commands file.
type PinsConfig struct {
	Path string `yaml:"path"`
}

// SuggestionsConfig locates the suggestions inbox.
type SuggestionsConfig struct {
	Dir string `yaml:"dir"`
}

// AnalyticsConfig tunes event buffering and snapshot persistence.
type AnalyticsConfig struct {
	BufferSize       int           `yaml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values, validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local use.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:   "data/commands",
			Format: FormatYAML,
		},
		Indexer: IndexerConfig{
			Weights: WeightsConfig{
				Name:        4,
				Option:      3,
				Category:    2,
				Description: 1,
			},
		},
		Search: SearchConfig{
			MaxResults:   500,
			DefaultLimit: 50,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       120,
			RateWindow:      time.Minute,
		},
		Postgres: PostgresConfig{
			Port:            5432,
			Database:        "lcl",
			User:            "lcl",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "lcl-analytics",
			Topics: KafkaTopics{
				SearchEvents: "lcl-search-events",
			},
		},
		Redis: RedisConfig{
			PoolSize:  10,
			CacheTTL:  5 * time.Minute,
			KeyPrefix: "lcl:",
		},
		Admin: AdminConfig{
			TokenFile: ".lcl_admin_token",
		},
		Pins: PinsConfig{
			Path: ".pins.json",
		},
		Suggestions: SuggestionsConfig{
			Dir: ".inbox/suggestions",
		},
		Analytics: AnalyticsConfig{
			BufferSize:       10000,
			BatchSize:        100,
			FlushInterval:    5 * time.Second,
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks values that would otherwise surface as runtime failures.
func (c *Config) Validate() error {
	w := c.Indexer.Weights
	weights := []struct {
		field string
		value float64
	}{
		{"indexer.weights.name_weight", w.Name},
		{"indexer.weights.option_weight", w.Option},
		{"indexer.weights.category_weight", w.Category},
		{"indexer.weights.description_weight", w.Description},
	}
	for _, wt := range weights {
		if wt.value < 0 || math.IsNaN(wt.value) || math.IsInf(wt.value, 0) {
			return &apperrors.ConfigError{Field: wt.field, Reason: fmt.Sprintf("must be a finite non-negative number, got %v", wt.value)}
		}
	}
	switch c.Catalog.Format {
	case FormatYAML, FormatMarkdown:
	default:
		return &apperrors.ConfigError{Field: "catalog.format", Reason: fmt.Sprintf("unknown format %q (want %q or %q)", c.Catalog.Format, FormatYAML, FormatMarkdown)}
	}
	if c.Search.DefaultLimit < 0 {
		return &apperrors.ConfigError{Field: "search.defaultLimit", Reason: "must not be negative"}
	}
	if c.Search.MaxResults <= 0 {
		return &apperrors.ConfigError{Field: "search.maxResults", Reason: "must be positive"}
	}
	if c.Analytics.FlushInterval <= 0 {
		return &apperrors.ConfigError{Field: "analytics.flushInterval", Reason: "must be positive"}
	}
	if c.Analytics.SnapshotInterval <= 0 {
		return &apperrors.ConfigError{Field: "analytics.snapshotInterval", Reason: "must be positive"}
	}
	return nil
}

// applyEnvOverrides reads LCL_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LCL_COMMANDS_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("LCL_CATALOG_FORMAT"); v != "" {
		cfg.Catalog.Format = v
	}
	if v := os.Getenv("LCL_INDEX_CACHE_DIR"); v != "" {
		cfg.Indexer.CacheDir = v
	}
	if v := os.Getenv("LCL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LCL_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("LCL_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("LCL_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("LCL_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("LCL_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("LCL_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LCL_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LCL_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LCL_ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
	if v := os.Getenv("LCL_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LCL_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
