// Package config loads binary configuration from an optional file and
// PREFS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-prefs/pkg/format"
	"github.com/goliatone/go-prefs/pkg/store"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PREFS_STORE_PATH or PREFS_LOG_LEVEL.
const EnvPrefix = "PREFS"

type Config struct {
	// Format is json or yaml. Empty picks by the store path extension.
	Format       string         `mapstructure:"format"`
	Document     string         `mapstructure:"document"`
	Version      int            `mapstructure:"version"`
	TickInterval time.Duration  `mapstructure:"tick_interval"`
	Store        store.Config   `mapstructure:"store"`
	Log          LogConfig      `mapstructure:"log"`
	Activity     ActivityConfig `mapstructure:"activity"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ActivityConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
	ActorID string `mapstructure:"actor_id"`
}

var defaults = map[string]any{
	"format":               "",
	"document":             "prefs",
	"version":              0,
	"tick_interval":        "250ms",
	"store.driver":         store.DriverFile,
	"store.path":           "prefs.json",
	"store.key":            "prefs",
	"store.bucket":         "",
	"store.table":          "",
	"store.redis_addr":     "",
	"store.redis_password": "",
	"store.redis_db":       0,
	"log.level":            "info",
	"log.pretty":           false,
	"activity.enabled":     false,
	"activity.channel":     "",
	"activity.actor_id":    "",
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when given and decodes the merged configuration.
func Load(path string) (Config, error) {
	return LoadWith(New(), path)
}

// LoadWith decodes from v, which may carry bound command-line flags.
func LoadWith(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("config: tick_interval must be positive, got %s", cfg.TickInterval)
	}
	return cfg, nil
}

// DocumentFormat resolves the configured format.
func (c Config) DocumentFormat() (format.Format, error) {
	if strings.TrimSpace(c.Format) == "" {
		return format.ForPath(c.Store.Path), nil
	}
	return format.ByName(c.Format)
}
