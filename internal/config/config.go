// Package config loads portal settings from .portal.yaml and PORTAL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Session       SessionConfig       `mapstructure:"session"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Frontend      FrontendConfig      `mapstructure:"frontend"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Output        OutputConfig        `mapstructure:"output"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
	// When set the session lives in Postgres instead of File.
	DatabaseURL string `mapstructure:"database_url"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type FrontendConfig struct {
	DistDir string `mapstructure:"dist_dir"`
}

type NotificationsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type AuditConfig struct {
	File string `mapstructure:"file"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Colors bool   `mapstructure:"colors"`
	Format string `mapstructure:"format"`
}

// Load reads cfgFile (or .portal.yaml from the usual places), then a .env
// file in the working directory, then PORTAL_* variables, which win.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".portal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/portal")
	}

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", time.Duration(0))

	v.SetDefault("session.file", filepath.Join(stateDir(), "session.json"))
	v.SetDefault("session.database_url", "")

	v.SetDefault("http.addr", ":5173")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 20*time.Second)

	v.SetDefault("frontend.dist_dir", "")
	v.SetDefault("notifications.interval", 30*time.Second)
	v.SetDefault("audit.file", filepath.Join(stateDir(), "audit.log"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
	v.SetDefault("output.format", "table")
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "portal")
	}
	return "./data"
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://")
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0")
	}
	if cfg.Session.File == "" && cfg.Session.DatabaseURL == "" {
		return fmt.Errorf("session.file must not be empty")
	}
	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be > 0")
	}
	if cfg.Notifications.Interval <= 0 {
		return fmt.Errorf("notifications.interval must be > 0")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}
	validOutputs := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be table, json, or yaml)", cfg.Output.Format)
	}
	return nil
}
