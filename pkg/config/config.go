// Package config loads feedscroll settings from a YAML file, a .env file and
// FEEDSCROLL_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FEEDSCROLL_PROVIDER_BASE_URL.
const EnvPrefix = "FEEDSCROLL"

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Loader   LoaderConfig   `mapstructure:"loader"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LoaderConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	PageTimeout    time.Duration `mapstructure:"page_timeout"`
}

type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ServerConfig struct {
	Port     int           `mapstructure:"port"`
	Mode     string        `mapstructure:"mode"`
	Pages    int           `mapstructure:"pages"`
	PerPage  int           `mapstructure:"per_page"`
	Latency  time.Duration `mapstructure:"latency"`
	Seed     int64         `mapstructure:"seed"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Load reads the configuration. An empty configPath searches ./configs and
// the working directory for config.yaml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.base_url", "http://localhost:8080")
	v.SetDefault("provider.user_agent", "feedscroll/1.0")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("loader.max_concurrency", 10)
	v.SetDefault("loader.page_timeout", 15*time.Second)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.pages", 10)
	v.SetDefault("server.per_page", 10)
	v.SetDefault("server.latency", 500*time.Millisecond)
	v.SetDefault("server.seed", 1)
	v.SetDefault("server.cache_ttl", 30*time.Second)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Provider.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("provider.base_url must be an absolute http(s) url (got %q)", c.Provider.BaseURL)
	}
	if c.Provider.UserAgent == "" {
		return fmt.Errorf("provider.user_agent is required")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be > 0 (got %s)", c.Provider.Timeout)
	}
	if c.Loader.MaxConcurrency < 1 {
		return fmt.Errorf("loader.max_concurrency must be >= 1 (got %d)", c.Loader.MaxConcurrency)
	}
	if c.Loader.PageTimeout <= 0 {
		return fmt.Errorf("loader.page_timeout must be > 0 (got %s)", c.Loader.PageTimeout)
	}
	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when the cache is enabled")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if c.Server.Pages < 0 || c.Server.PerPage < 1 {
		return fmt.Errorf("server.pages must be >= 0 and server.per_page >= 1 (got %d, %d)", c.Server.Pages, c.Server.PerPage)
	}
	if c.Server.Latency < 0 {
		return fmt.Errorf("server.latency must be >= 0 (got %s)", c.Server.Latency)
	}
	return nil
}

// Logging converts the log section for logging.Setup.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// ListenAddr returns the provider listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
