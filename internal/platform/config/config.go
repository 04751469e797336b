package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type WebhooksConfig struct {
	// Shared secret for inbound signature verification. Empty disables
	// verification (open mode).
	Secret          string        `mapstructure:"secret"`
	MaxDeliveries   int           `mapstructure:"max_deliveries"`
	MaxRetries      int           `mapstructure:"max_retries"`
	DedupWindow     time.Duration `mapstructure:"dedup_window"`
	DedupMaxEntries int           `mapstructure:"dedup_max_entries"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type RateLimitConfig struct {
	IngestPerMinute   int `mapstructure:"ingest_per_minute"`
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "data/alertgate.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("webhooks.max_deliveries", 10000)
	viper.SetDefault("webhooks.max_retries", 3)
	viper.SetDefault("webhooks.dedup_window", 6*time.Hour)
	viper.SetDefault("webhooks.dedup_max_entries", 100000)
	viper.SetDefault("webhooks.dispatch_timeout", 10*time.Second)
	viper.SetDefault("webhooks.retry_interval", 5*time.Minute)
	viper.SetDefault("jwt.access_token_ttl", time.Hour)
	viper.SetDefault("rate_limit.ingest_per_minute", 10000)
	viper.SetDefault("rate_limit.api_read_per_minute", 1000)
	viper.SetDefault("rate_limit.api_write_per_minute", 100)
	viper.SetDefault("logging.level", "info")
}
