// Package config loads runtime settings for the server and the scraper.
// Priority order: environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"port"`
	DataDir            string        `mapstructure:"data_dir"`
	DBPath             string        `mapstructure:"db_path"`
	Region             string        `mapstructure:"region"`
	PrimaryBaseURL     string        `mapstructure:"primary_base_url"`
	LimitlessBaseURL   string        `mapstructure:"limitless_base_url"`
	ScrapeInterval     time.Duration `mapstructure:"scrape_interval"`
	ResolveConcurrency int           `mapstructure:"resolve_concurrency"`
	ArtCacheSize       int           `mapstructure:"art_cache_size"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"` // comma-separated
	FrontendDistPath   string        `mapstructure:"frontend_dist_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("db_path", "./pokeproxy.db")
	v.SetDefault("region", "en")
	v.SetDefault("primary_base_url", "https://raw.githubusercontent.com/PokemonTCG/pokemon-tcg-data/master")
	v.SetDefault("limitless_base_url", "https://limitlesstcg.com")
	v.SetDefault("scrape_interval", "5ms")
	v.SetDefault("resolve_concurrency", 8)
	v.SetDefault("art_cache_size", 64)
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("frontend_dist_path", "")
}

// Load reads pokeproxy.yaml (from configPath, or ./config and . when empty) and the
// POKEPROXY_* environment. A missing config file is not an error unless configPath names it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("pokeproxy")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("POKEPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments.
	_ = v.BindEnv("port", "POKEPROXY_PORT", "PORT")
	_ = v.BindEnv("db_path", "POKEPROXY_DB_PATH", "DB_PATH")
	_ = v.BindEnv("cors_allowed_origins", "POKEPROXY_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("frontend_dist_path", "POKEPROXY_FRONTEND_DIST_PATH", "FRONTEND_DIST_PATH")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must be set")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}
	if c.ScrapeInterval < 0 {
		return fmt.Errorf("scrape_interval must not be negative, got %s", c.ScrapeInterval)
	}
	if c.ResolveConcurrency < 1 {
		return fmt.Errorf("resolve_concurrency must be at least 1, got %d", c.ResolveConcurrency)
	}
	if c.ArtCacheSize < 1 {
		return fmt.Errorf("art_cache_size must be at least 1, got %d", c.ArtCacheSize)
	}
	return nil
}

// AllowedOrigins splits CORSAllowedOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
