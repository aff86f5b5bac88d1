package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the autovis CLI configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	Rules RulesConfig `mapstructure:"rules"`
}

// LogConfig configures logger.Setup.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // json, text
	Output    string `mapstructure:"output"` // stdout, stderr, file
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// StoreConfig selects where builder state is persisted.
type StoreConfig struct {
	Type        string        `mapstructure:"type"` // memory, redis
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// RulesConfig lists extra YAML rule files, registered after the built-ins.
type RulesConfig struct {
	Files []string `mapstructure:"files"`
}

// Store types.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.add_source", false)

	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.addr", "localhost:6379")
	v.SetDefault("store.password", "")
	v.SetDefault("store.db", 0)
	v.SetDefault("store.key_prefix", "autovis:")
	v.SetDefault("store.ttl", 24*time.Hour)
	v.SetDefault("store.dial_timeout", 5*time.Second)

	v.SetDefault("rules.files", []string{})
}

// Load reads configuration from configPath. With an empty path it looks for
// autovis.yaml in ./configs and the working directory, and falls back to
// defaults when none exists. AUTOVIS_* environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("autovis")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTOVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges and required fields.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return fmt.Errorf("log.file_path is required when log.output is 'file'")
		}
	default:
		return fmt.Errorf("invalid log output: %s", c.Log.Output)
	}

	switch c.Store.Type {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for redis")
		}
		if c.Store.DB < 0 {
			return fmt.Errorf("invalid store.db: %d", c.Store.DB)
		}
	default:
		return fmt.Errorf("invalid store type: %s, must be 'memory' or 'redis'", c.Store.Type)
	}

	if c.Store.TTL < 0 {
		return fmt.Errorf("invalid store.ttl: %s", c.Store.TTL)
	}

	return nil
}
