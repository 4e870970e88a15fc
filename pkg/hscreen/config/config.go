// Package config loads hscreen settings from defaults, an optional YAML file
// and HSCREEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "HSCREEN"

type Config struct {
	Data   string       `mapstructure:"data"`
	Output OutputConfig `mapstructure:"output"`
	Yahoo  YahooConfig  `mapstructure:"yahoo"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

type OutputConfig struct {
	// Format is table, json or syms.
	Format      string `mapstructure:"format"`
	Color       bool   `mapstructure:"color"`
	Pretty      bool   `mapstructure:"pretty"`
	MaxColWidth int    `mapstructure:"max_col_width"`
}

type YahooConfig struct {
	// BaseURL is the fundamentals-timeseries host.
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second
}

type CacheConfig struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Size int           `mapstructure:"size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and env binding applied. The
// CLI binds its flags onto it before calling Decode.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. An empty path searches ./hscreen.yaml
// and $HOME/.config/hscreen/hscreen.yaml; a missing file is not an error
// unless path was given explicitly.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("hscreen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "hscreen"))
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads defaults, the config file at path (or the search paths) and the
// environment.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data", "stocks.csv")

	v.SetDefault("output.format", "table")
	v.SetDefault("output.color", true)
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.max_col_width", 0)

	v.SetDefault("yahoo.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("yahoo.timeout", 10*time.Second)
	v.SetDefault("yahoo.retries", 1)
	v.SetDefault("yahoo.rate_limit", 5)

	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.size", 256)

	v.SetDefault("log.level", "info")
}
