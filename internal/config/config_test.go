package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Region != "en" {
		t.Errorf("Region = %s, want en", cfg.Region)
	}
	if cfg.ScrapeInterval != 5*time.Millisecond {
		t.Errorf("ScrapeInterval = %s, want 5ms", cfg.ScrapeInterval)
	}
	if cfg.ResolveConcurrency != 8 || cfg.ArtCacheSize != 64 {
		t.Errorf("unexpected limits: concurrency=%d art=%d", cfg.ResolveConcurrency, cfg.ArtCacheSize)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("POKEPROXY_RESOLVE_CONCURRENCY", "3")
	t.Setenv("POKEPROXY_SCRAPE_INTERVAL", "250ms")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ResolveConcurrency != 3 {
		t.Errorf("ResolveConcurrency = %d, want 3", cfg.ResolveConcurrency)
	}
	if cfg.ScrapeInterval != 250*time.Millisecond {
		t.Errorf("ScrapeInterval = %s, want 250ms", cfg.ScrapeInterval)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Port)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins(), want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins(), want)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokeproxy.yaml")
	content := "port: \"7000\"\ndata_dir: /srv/cards\nregion: jp\nart_cache_size: 16\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7000" || cfg.DataDir != "/srv/cards" || cfg.Region != "jp" || cfg.ArtCacheSize != 16 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Unset keys keep their defaults
	if cfg.ResolveConcurrency != 8 {
		t.Errorf("ResolveConcurrency = %d, want 8", cfg.ResolveConcurrency)
	}
}

func TestLoad_MissingNamedFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a config file that does not exist")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "8080", DataDir: "./data", ResolveConcurrency: 1, ArtCacheSize: 1}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no port", func(c *Config) { c.Port = "" }, true},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
		{"negative interval", func(c *Config) { c.ScrapeInterval = -time.Second }, true},
		{"zero concurrency", func(c *Config) { c.ResolveConcurrency = 0 }, true},
		{"zero art cache", func(c *Config) { c.ArtCacheSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
