// Package config handles application configuration loading and management
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	BaseURL      string `mapstructure:"base_url"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
	EnableDocs   bool   `mapstructure:"enable_docs"`   // enable /docs endpoint
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig holds the per-client fixed window policy
type RateLimitConfig struct {
	Limit         int           `mapstructure:"limit"`          // requests per window
	Window        time.Duration `mapstructure:"window"`         // window length
	SweepEvery    int           `mapstructure:"sweep_every"`    // sweep expired entries every N checks
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // or at most once per interval
}

// CatalogConfig holds catalog source configuration
type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty uses the embedded catalog
}

// NATSConfig holds NATS-related configuration
type NATSConfig struct {
	URL string `mapstructure:"url"` // empty disables events
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel maps the configured level name to a slog.Level
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logging.level %q: %w", l.Level, err)
	}
	return level, nil
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 10)  // 10 seconds
	v.SetDefault("server.write_timeout", 30) // 30 seconds
	v.SetDefault("server.idle_timeout", 120) // 120 seconds
	v.SetDefault("server.enable_docs", true)
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", "60s")
	v.SetDefault("ratelimit.sweep_every", 100)
	v.SetDefault("ratelimit.sweep_interval", "1m")
	v.SetDefault("catalog.path", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration from file and environment variables. A
// missing config.toml in the search path is not an error; every key has a
// default. A file set with v.SetConfigFile must exist.
func Load(v *viper.Viper) (*Config, error) {
	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.allformats")
	}

	// Environment variable overrides
	v.SetEnvPrefix("ALLFORMATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind environment variables
	err := v.BindEnv("nats.url", "NATS_URL")
	if err != nil {
		return nil, fmt.Errorf("failed to bind env variable: %w", err)
	}
	err = v.BindEnv("catalog.path", "CATALOG_PATH")
	if err != nil {
		return nil, fmt.Errorf("failed to bind env variable: %w", err)
	}

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("ratelimit.limit must be positive, got %d", c.RateLimit.Limit)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive, got %s", c.RateLimit.Window)
	}
	if c.RateLimit.SweepEvery < 0 || c.RateLimit.SweepInterval < 0 {
		return fmt.Errorf("ratelimit sweep settings must not be negative")
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
