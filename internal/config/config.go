package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourcePath string
	Categories []domain.Category

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of classified records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	SeriesCacheSize int
}

// Load reads configuration from environment variables, applying defaults where
// unset. Variables in a .env file in the working directory are used when the
// environment does not already define them.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	categories, err := parseCategories(os.Getenv("CATEGORIES"))
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourcePath:      os.Getenv("SOURCE_PATH"),
		Categories:      categories,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "classified-water-samples"),

		SeriesCacheSize: cacheSize,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// parseCategories reads a comma-separated category list. Empty means every category.
func parseCategories(s string) ([]domain.Category, error) {
	if strings.TrimSpace(s) == "" {
		var all []domain.Category
		for _, p := range domain.Profiles() {
			all = append(all, p.Category)
		}
		return all, nil
	}

	var out []domain.Category
	seen := make(map[domain.Category]bool)
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := domain.LookupProfile(name)
		if err != nil {
			return nil, fmt.Errorf("invalid CATEGORIES: %w", err)
		}
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	if len(out) == 0 {
		return nil, errors.New("invalid CATEGORIES: no category named")
	}
	return out, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseCacheSize() (int, error) {
	s := sharedcfg.EnvOrDefault("SERIES_CACHE_SIZE", "256")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid SERIES_CACHE_SIZE %q: must be a positive integer", s)
	}
	return n, nil
}
