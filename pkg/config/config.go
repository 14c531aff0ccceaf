package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CORALDB"

// Config is the complete, validated application configuration.
type Config struct {
	RestAPI   RestAPIConfig   `mapstructure:"rest_api"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sync      SyncConfig      `mapstructure:"sync"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RestAPIConfig controls the HTTP bind address and auth policy.
type RestAPIConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	MaxConnections int      `mapstructure:"max_connections"`
	CORS           bool     `mapstructure:"cors"`
	AllowOrigins   []string `mapstructure:"allow_origins"`
	AuthLevel      string   `mapstructure:"auth_level"` // none, write, read, all (or legacy bool)
	APIKey         string   `mapstructure:"api_key"`
}

// AdminConfig is the single static admin credential pair bootstrapped for
// admin-gated operations (table/drop). Password is never logged; it is
// hashed into an AdminCredentials at server construction time.
type AdminConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// LoggingConfig selects the structured-logging level and render format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error, off
	Format string `mapstructure:"format"` // console, json
}

// SyncConfig configures the optional periodic columnar sync collaborator
// (internal/sync), per §6.5. Disabled unless Enabled is true.
type SyncConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	SourceHost      string   `mapstructure:"source_host"`
	SourcePort      int      `mapstructure:"source_port"`
	SourceUser      string   `mapstructure:"source_user"`
	SourcePassword  string   `mapstructure:"source_password"`
	SourceDatabase  string   `mapstructure:"source_database"`
	IntervalSeconds int      `mapstructure:"interval_seconds"` // 0 = manual trigger only
	Tables          []string `mapstructure:"tables"`           // "src:dst:col=type,..."
}

// RateLimitConfig mirrors internal/ratelimit.Config's shape so it can be
// bound by Viper without importing that package's mapstructure tags.
type RateLimitConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Global  RateLimitEntry   `mapstructure:"global"`
	Tools   []RateLimitEntry `mapstructure:"tools"`
}

// RateLimitEntry is one bucket's parameters; Name is empty for Global.
type RateLimitEntry struct {
	Name              string  `mapstructure:"name"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// DefaultConfig returns coraldb's built-in defaults, used both as the
// Viper default layer and as the zero-config fallback.
func DefaultConfig() *Config {
	return &Config{
		RestAPI: RestAPIConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxConnections: 1000,
			CORS:           true,
			AuthLevel:      "none",
		},
		Admin: AdminConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Sync: SyncConfig{
			Enabled:         false,
			IntervalSeconds: 0,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Global:  RateLimitEntry{RequestsPerSecond: 200, BurstSize: 400},
			Tools: []RateLimitEntry{
				{Name: "read", RequestsPerSecond: 100, BurstSize: 200},
				{Name: "write", RequestsPerSecond: 50, BurstSize: 100},
				{Name: "table_admin", RequestsPerSecond: 5, BurstSize: 10},
				{Name: "default", RequestsPerSecond: 20, BurstSize: 40},
			},
		},
	}
}

// Load reads configuration from environment variables under the CORALDB_
// prefix, overlaid with an optional ./config.yaml (or
// /etc/coraldb/config.yaml), falling back entirely to DefaultConfig when
// neither is present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/coraldb")

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("rest_api.host", d.RestAPI.Host)
	v.SetDefault("rest_api.port", d.RestAPI.Port)
	v.SetDefault("rest_api.max_connections", d.RestAPI.MaxConnections)
	v.SetDefault("rest_api.cors", d.RestAPI.CORS)
	v.SetDefault("rest_api.auth_level", d.RestAPI.AuthLevel)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("sync.enabled", d.Sync.Enabled)
	v.SetDefault("sync.interval_seconds", d.Sync.IntervalSeconds)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.global.requests_per_second", d.RateLimit.Global.RequestsPerSecond)
	v.SetDefault("rate_limit.global.burst_size", d.RateLimit.Global.BurstSize)
	v.SetDefault("rate_limit.tools", d.RateLimit.Tools)
}

// bindEnvs explicitly binds each leaf key to its CORALDB_-prefixed
// environment variable. AutomaticEnv alone does not reliably populate
// nested struct fields through Unmarshal, so the scalar keys of the HTTP,
// admin, logging, sync, and global rate-limit blocks are bound here. The
// list-valued keys (rest_api.allow_origins, sync.tables, rate_limit.tools)
// are not bound and are read from the config file only.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"rest_api.host", "rest_api.port", "rest_api.max_connections",
		"rest_api.cors", "rest_api.auth_level", "rest_api.api_key",
		"admin.user", "admin.password",
		"logging.level", "logging.format",
		"sync.enabled", "sync.source_host", "sync.source_port",
		"sync.source_user", "sync.source_password", "sync.source_database",
		"sync.interval_seconds",
		"rate_limit.enabled", "rate_limit.global.requests_per_second", "rate_limit.global.burst_size",
	}
	for _, key := range keys {
		envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		v.BindEnv(key, envVar)
	}
}

var validAuthLevels = map[string]bool{
	"none": true, "write": true, "read": true, "all": true,
	"true": true, "false": true,
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// Validate rejects configurations the rest of the system cannot act on.
func (c *Config) Validate() error {
	if c.RestAPI.Port < 1 || c.RestAPI.Port > 65535 {
		return fmt.Errorf("rest_api.port must be between 1 and 65535")
	}
	if c.RestAPI.Host == "" {
		return fmt.Errorf("rest_api.host is required")
	}
	if c.RestAPI.MaxConnections < 1 {
		return fmt.Errorf("rest_api.max_connections must be >= 1")
	}
	if !validAuthLevels[strings.ToLower(c.RestAPI.AuthLevel)] {
		return fmt.Errorf("rest_api.auth_level must be one of: none, write, read, all")
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, off")
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be one of: console, json")
	}

	if c.Sync.Enabled {
		if c.Sync.SourceHost == "" {
			return fmt.Errorf("sync.source_host is required when sync is enabled")
		}
		if c.Sync.IntervalSeconds < 0 {
			return fmt.Errorf("sync.interval_seconds must be >= 0")
		}
	}

	return nil
}

// ConfigPath returns the directory an optional config.yaml overlay is
// searched for alongside the current directory.
func ConfigPath() string {
	return filepath.Join(string(os.PathSeparator), "etc", "coraldb")
}
