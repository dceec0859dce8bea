// Package config loads and validates searchd configuration using Viper.
//
// Settings come from a YAML config file, environment variables with the
// SEARCHD_ prefix, and bound command-line flags, in increasing precedence.
// The resulting Config is immutable after Load and is shared read-only by
// every connection handler.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all searchd configuration.
type Config struct {
	File   FileConfig   `mapstructure:"file"`
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Search SearchConfig `mapstructure:"search"`
	TLS    TLSConfig    `mapstructure:"tls"`
	Log    LogConfig    `mapstructure:"log"`
}

// FileConfig points at the reference file being searched.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig controls the TCP listener and the health endpoint.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// MaxConnections caps concurrently served connections; 0 means unbounded.
	MaxConnections int `mapstructure:"max_connections"`

	// ReadTimeout is the per-read idle deadline on a connection; 0 disables it.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// HealthPort serves HTTP /health, /ready and /stats; 0 disables it.
	HealthPort int `mapstructure:"health_port"`
}

// AuthConfig controls the pre-shared-key gate.
type AuthConfig struct {
	PSKEnabled bool   `mapstructure:"psk_enabled"`
	PSK        string `mapstructure:"psk"`
}

// SearchConfig selects the search mode.
type SearchConfig struct {
	// RereadOnQuery re-reads the file from disk for every query instead of
	// serving from the in-memory cache.
	RereadOnQuery bool `mapstructure:"reread_on_query"`

	// WatchFile reloads the in-memory cache when the reference file changes.
	// Only meaningful when RereadOnQuery is false.
	WatchFile bool `mapstructure:"watch_file"`
}

// TLSConfig controls TLS on the search listener.
type TLSConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CertFile     string `mapstructure:"cert_file"`
	KeyFile      string `mapstructure:"key_file"`
	AutoGenerate bool   `mapstructure:"auto_generate"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers defaults on the given Viper instance. Every key gets
// a default, even an empty one: viper only maps environment variables onto
// keys it already knows about when unmarshalling.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("file.path", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 44445)
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.read_timeout", time.Duration(0))
	v.SetDefault("server.health_port", 0)
	v.SetDefault("auth.psk_enabled", false)
	v.SetDefault("auth.psk", "")
	v.SetDefault("search.reread_on_query", false)
	v.SetDefault("search.watch_file", false)
	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.auto_generate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from the given Viper instance and validates it.
// If cfgFile is non-empty it is read as a YAML config file; otherwise a
// searchd.yaml in the working directory is used when present.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("searchd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SEARCHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; env and flags may be enough.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
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

// Validate ensures configuration is coherent.
func (c *Config) Validate() error {
	if c.File.Path == "" {
		return fmt.Errorf("file.path must be set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range 1-65535, got %d", c.Server.Port)
	}

	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must not be negative, got %d", c.Server.MaxConnections)
	}

	if c.Auth.PSKEnabled && c.Auth.PSK == "" {
		return fmt.Errorf("auth.psk must be set when auth.psk_enabled is true")
	}

	if c.Search.RereadOnQuery && c.Search.WatchFile {
		return fmt.Errorf("search.watch_file has no effect when search.reread_on_query is true")
	}

	if c.TLS.Enabled && !c.TLS.AutoGenerate {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file must be set when tls.auto_generate is false")
		}
	}

	return nil
}

// Addr returns the host:port the search listener binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
