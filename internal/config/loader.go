package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from various sources with priority order:
// 1. Environment variables
// 2. Configuration file (config.yaml)
// 3. Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/veritas/")
	v.AddConfigPath("./configs/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("VERITAS")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("mongo.url", "")
	v.SetDefault("mongo.database", "cleaned_articles")
	v.SetDefault("mongo.timeout", 10000)

	v.SetDefault("postgres.url", "")

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 3600)

	v.SetDefault("similarity.provider_url", "")
	v.SetDefault("similarity.timeout", 5000)
	v.SetDefault("similarity.retries", 1)

	v.SetDefault("pipeline.workers", runtime.NumCPU())
	v.SetDefault("pipeline.queue_factor", 2)
	v.SetDefault("pipeline.corroboration_window_hours", 72)
	v.SetDefault("pipeline.reputation_half_life_days", 90)
	v.SetDefault("pipeline.validation_deadline_sec", 30)
	v.SetDefault("pipeline.store_retry_base_ms", 500)
	v.SetDefault("pipeline.store_retry_max", 5)

	v.SetDefault("trust.cache_ttl_sec", 3600)

	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// overrideWithEnvVars handles the externally documented environment variables,
// which do not follow the VERITAS_ prefix convention.
func overrideWithEnvVars(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("port", p)
		}
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("log_level", logLevel)
	}
	if url := os.Getenv("MONGODB_URL"); url != "" {
		v.Set("mongo.url", url)
	}
	if db := os.Getenv("MONGODB_DB_NAME"); db != "" {
		v.Set("mongo.database", db)
	}
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		v.Set("postgres.url", url)
	}
	if url := os.Getenv("SIMILARITY_PROVIDER_URL"); url != "" {
		v.Set("similarity.provider_url", url)
	}
	if addr := os.Getenv("CACHE_ADDR"); addr != "" {
		v.Set("cache.addr", addr)
	}
	if hours := os.Getenv("CORROBORATION_WINDOW_HOURS"); hours != "" {
		if h, err := strconv.Atoi(hours); err == nil {
			v.Set("pipeline.corroboration_window_hours", h)
		}
	}
	if ttl := os.Getenv("TRUST_CACHE_TTL_SEC"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			v.Set("trust.cache_ttl_sec", t)
		}
	}
	if days := os.Getenv("REPUTATION_HALF_LIFE_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			v.Set("pipeline.reputation_half_life_days", d)
		}
	}
	if workers := os.Getenv("MAX_PIPELINE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			v.Set("pipeline.workers", w)
		}
	}
}

func validateConfig(config *Config) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}
	if config.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline workers must be positive, got %d", config.Pipeline.Workers)
	}
	if config.Pipeline.CorroborationWindowHours <= 0 {
		return fmt.Errorf("corroboration window must be positive, got %d", config.Pipeline.CorroborationWindowHours)
	}
	if config.Pipeline.ReputationHalfLifeDays <= 0 {
		return fmt.Errorf("reputation half-life must be positive, got %d", config.Pipeline.ReputationHalfLifeDays)
	}
	if config.Trust.CacheTTLSec <= 0 {
		return fmt.Errorf("trust cache TTL must be positive, got %d", config.Trust.CacheTTLSec)
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}
	return nil
}
