// Package config loads toolkit-wide settings from a config file and
// environment variables via viper, grounded on
// tobilg-duckdb-tileserver/internal/conf's InitConfig/Configuration
// pattern (env-prefixed overrides winning over file values, TOML
// config files, struct-tagged defaults).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name viper
// checks, mirroring AppConfig.EnvPrefix in the teacher's conf package.
const EnvPrefix = "VMAP2TOOLKIT"

// RenderConfig holds stylesheet rendering defaults.
type RenderConfig struct {
	DefaultDPI    float64 `mapstructure:"DefaultDPI"`
	TileSize      int     `mapstructure:"TileSize"`
	CacheBytes    int64   `mapstructure:"CacheBytes"`
	StylesheetDir string  `mapstructure:"StylesheetDir"`
}

// StoreConfig holds default object-store behavior.
type StoreConfig struct {
	CatalogFile string `mapstructure:"CatalogFile"`
	GeohashBits int     `mapstructure:"GeohashBits"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	Debug bool `mapstructure:"Debug"`
}

// Config is the full toolkit configuration tree.
type Config struct {
	Render RenderConfig `mapstructure:"Render"`
	Store  StoreConfig  `mapstructure:"Store"`
	Server ServerConfig `mapstructure:"Server"`
}

// Configuration is the process-wide loaded configuration, populated by
// InitConfig. Matches the teacher's package-level `Configuration` var.
var Configuration Config

// ConfigError reports an out-of-range or otherwise invalid
// configuration option caught by validate after loading.
type ConfigError struct {
	Option string
	Msg    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Option, e.Msg)
}

// validate rejects configuration values that would make the renderer
// or store misbehave in ways viper's own unmarshal can't catch (zero
// tile sizes, out-of-range geohash precision).
func validate(cfg *Config) error {
	if cfg.Render.TileSize <= 0 {
		return &ConfigError{Option: "Render.TileSize", Msg: "must be positive"}
	}
	if cfg.Store.GeohashBits <= 0 || cfg.Store.GeohashBits > 64 {
		return &ConfigError{Option: "Store.GeohashBits", Msg: "must be in (0, 64]"}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Render.DefaultDPI", 300.0)
	v.SetDefault("Render.TileSize", 256)
	v.SetDefault("Render.CacheBytes", int64(256<<20))
	v.SetDefault("Render.StylesheetDir", "")
	v.SetDefault("Store.CatalogFile", "")
	v.SetDefault("Store.GeohashBits", 32)
	v.SetDefault("Server.Debug", false)
}

// InitConfig loads configuration from configFile (a TOML/YAML/JSON
// file recognized by its extension; "" skips file loading) and from
// environment variables prefixed with EnvPrefix, with environment
// variables taking precedence, mirroring the teacher's InitConfig.
func InitConfig(configFile string, debug bool) error {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	if debug {
		cfg.Server.Debug = true
	}
	if err := validate(&cfg); err != nil {
		return err
	}
	Configuration = cfg
	return nil
}
