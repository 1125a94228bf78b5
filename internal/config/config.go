// Package config loads service settings from defaults, an optional config
// file and TOOLRANK_* environment variables.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "TOOLRANK"

type Config struct {
	Addr        string `mapstructure:"addr"`
	DiagAddr    string `mapstructure:"diag_addr"`
	DBPath      string `mapstructure:"db_path"`
	AdminName   string `mapstructure:"admin_name"`
	AdminToken  string `mapstructure:"admin_token"`
	WeightsFile string `mapstructure:"weights_file"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	TrendingTop int    `mapstructure:"trending_top"`
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":3333")
	v.SetDefault("diag_addr", ":9999")
	v.SetDefault("db_path", "toolrank.db")
	v.SetDefault("admin_name", "admin")
	v.SetDefault("admin_token", "")
	v.SetDefault("weights_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("trending_top", 10)
}

// Load reads file (when set, otherwise ./toolrank.{yaml,toml,json} if
// present) and the environment into a validated Config. Flags should be
// bound on v before calling Load.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("toolrank")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return &ConfigError{Field: "addr", Message: "must not be empty"}
	case c.DBPath == "":
		return &ConfigError{Field: "db_path", Message: "must not be empty"}
	case c.LogFormat != "json" && c.LogFormat != "console":
		return &ConfigError{Field: "log_format", Message: "must be json or console"}
	case c.TrendingTop <= 0:
		return &ConfigError{Field: "trending_top", Message: "must be positive"}
	}

	return nil
}
