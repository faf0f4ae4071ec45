package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.BaseURL != "http://localhost:8080" {
		t.Errorf("provider.base_url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Loader.MaxConcurrency != 10 {
		t.Errorf("loader.max_concurrency = %d, want 10", cfg.Loader.MaxConcurrency)
	}
	if cfg.Loader.PageTimeout != 15*time.Second {
		t.Errorf("loader.page_timeout = %s, want 15s", cfg.Loader.PageTimeout)
	}
	if cfg.Server.Pages != 10 || cfg.Server.PerPage != 10 {
		t.Errorf("server dataset = %dx%d, want 10x10", cfg.Server.Pages, cfg.Server.PerPage)
	}
	if cfg.Server.Latency != 500*time.Millisecond {
		t.Errorf("server.latency = %s, want 500ms", cfg.Server.Latency)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "feedscroll.yaml")
	content := `
provider:
  base_url: https://feed.example.com
loader:
  max_concurrency: 4
  page_timeout: 5s
server:
  latency: 0s
  pages: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FEEDSCROLL_LOADER_MAX_CONCURRENCY", "2")
	t.Setenv("FEEDSCROLL_CACHE_ENABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.BaseURL != "https://feed.example.com" {
		t.Errorf("provider.base_url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Loader.MaxConcurrency != 2 {
		t.Errorf("env should override file: max_concurrency = %d, want 2", cfg.Loader.MaxConcurrency)
	}
	if cfg.Loader.PageTimeout != 5*time.Second {
		t.Errorf("loader.page_timeout = %s, want 5s", cfg.Loader.PageTimeout)
	}
	if cfg.Server.Latency != 0 || cfg.Server.Pages != 3 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache.enabled should be set from env")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("loader: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"relative base url", func(c *Config) { c.Provider.BaseURL = "/api" }, "provider.base_url"},
		{"ftp base url", func(c *Config) { c.Provider.BaseURL = "ftp://host" }, "provider.base_url"},
		{"empty user agent", func(c *Config) { c.Provider.UserAgent = "" }, "user_agent"},
		{"zero concurrency", func(c *Config) { c.Loader.MaxConcurrency = 0 }, "max_concurrency"},
		{"zero page timeout", func(c *Config) { c.Loader.PageTimeout = 0 }, "page_timeout"},
		{"cache without addr", func(c *Config) { c.Cache.Enabled = true; c.Cache.RedisAddr = "" }, "redis_addr"},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero per page", func(c *Config) { c.Server.PerPage = 0 }, "per_page"},
		{"negative latency", func(c *Config) { c.Server.Latency = -time.Second }, "latency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Pretty = true
	cfg.Server.Port = 9090

	if got := cfg.ListenAddr(); got != ":9090" {
		t.Errorf("ListenAddr() = %q, want :9090", got)
	}
	lc := cfg.Logging()
	if lc.Level != "debug" || !lc.Pretty || lc.Output == nil {
		t.Errorf("Logging() = %+v", lc)
	}
}

func validConfig() *Config {
	return &Config{
		Provider: ProviderConfig{BaseURL: "http://localhost:8080", UserAgent: "test/1.0", Timeout: time.Second},
		Loader:   LoaderConfig{MaxConcurrency: 4, PageTimeout: time.Second},
		Cache:    CacheConfig{RedisAddr: "localhost:6379"},
		Log:      LogConfig{Level: "debug"},
		Server:   ServerConfig{Port: 8080, Mode: "test", Pages: 10, PerPage: 10},
	}
}
