package config

type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Port        int    `mapstructure:"port" yaml:"port"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Mongo      MongoConfig      `mapstructure:"mongo" yaml:"mongo"`
	Postgres   PostgresConfig   `mapstructure:"postgres" yaml:"postgres"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Similarity SimilarityConfig `mapstructure:"similarity" yaml:"similarity"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Trust      TrustConfig      `mapstructure:"trust" yaml:"trust"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" yaml:"monitoring"`
}

// MongoConfig points at the cleaned-articles store.
type MongoConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Database string `mapstructure:"database" yaml:"database"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
}

// PostgresConfig points at the insight store.
type PostgresConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// CacheConfig configures the Redis/Valkey results cache. Empty Addr means
// the noop cache is used and every lookup misses.
type CacheConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	TTL      int    `mapstructure:"ttl" yaml:"ttl"` // seconds, trust score TTL
}

// SimilarityConfig configures the optional external similarity provider.
type SimilarityConfig struct {
	ProviderURL string `mapstructure:"provider_url" yaml:"provider_url"`
	Timeout     int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
	Retries     int    `mapstructure:"retries" yaml:"retries"`
}

// PipelineConfig tunes the worker pool and the analytical windows.
type PipelineConfig struct {
	Workers                 int `mapstructure:"workers" yaml:"workers"`
	QueueFactor             int `mapstructure:"queue_factor" yaml:"queue_factor"` // queue cap = factor * workers
	CorroborationWindowHours int `mapstructure:"corroboration_window_hours" yaml:"corroboration_window_hours"`
	ReputationHalfLifeDays  int `mapstructure:"reputation_half_life_days" yaml:"reputation_half_life_days"`
	ValidationDeadlineSec   int `mapstructure:"validation_deadline_sec" yaml:"validation_deadline_sec"`
	StoreRetryBaseMs        int `mapstructure:"store_retry_base_ms" yaml:"store_retry_base_ms"`
	StoreRetryMax           int `mapstructure:"store_retry_max" yaml:"store_retry_max"`
}

// TrustConfig carries trust-calculation knobs exposed to operators.
type TrustConfig struct {
	CacheTTLSec int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path"`
}
