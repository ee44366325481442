// Package config loads runtime settings from the environment and an optional
// config file.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/vmfab/rutero/internal/fault"
)

// Config holds every tunable of the service.
type Config struct {
	// DatabaseURL selects the store: a postgres:// URL in production, a
	// sqlite path or file::memory: URI for development.
	DatabaseURL string `mapstructure:"database_url"`
	// ListenAddr is the HTTP bind address.
	ListenAddr string `mapstructure:"listen_addr"`
	// EvidenceDir is where uploaded evidence blobs land.
	EvidenceDir string `mapstructure:"evidence_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is text or json.
	LogFormat string `mapstructure:"log_format"`
}

// Load reads settings. Precedence: env vars (RUTERO_*), then the config file
// when one is given, then defaults.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "rutero.db")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("evidence_dir", "uploads/evidencias")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("RUTERO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fault.Invalid("leyendo configuración %s: %v", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fault.Invalid("configuración inválida: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fault.Invalid("log_level inválido %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fault.Invalid("log_format inválido %q", c.LogFormat)
	}
	if c.DatabaseURL == "" {
		return fault.Invalid("database_url requerido")
	}
	return nil
}
