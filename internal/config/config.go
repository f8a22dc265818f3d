// Package config loads service configuration from an optional YAML file
// with environment-variable overrides, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/ingest"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Rate   RateConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        string   `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	AdminSecret string   `yaml:"admin_secret" mapstructure:"admin_secret"`
}

// DataConfig points at the static tables and plan data.
type DataConfig struct {
	PlansDir    string `yaml:"plans_dir" mapstructure:"plans_dir"`
	ZipTable    string `yaml:"zip_table" mapstructure:"zip_table"`
	CityTable   string `yaml:"city_table" mapstructure:"city_table"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig bounds the filter result cache.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
}

// RateConfig bounds per-client request rates.
type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// IngestConfig maps city slugs to their provider listing sources.
type IngestConfig struct {
	Sources map[string][]ingest.SourceConfig `yaml:"sources" mapstructure:"sources"`
}

// LogConfig selects logger mode.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// Load reads configuration from the given file (optional) and the
// PLANFINDER_* environment. Missing file is not an error; defaults
// apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8081")
	v.SetDefault("server.cors_origins", []string{"http://localhost:4321"})
	v.SetDefault("data.plans_dir", "data/plans")
	v.SetDefault("data.zip_table", "data/zips.yaml")
	v.SetDefault("data.city_table", "data/cities.yaml")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.capacity", 512)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PLANFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}
