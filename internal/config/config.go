// Package config loads application settings from flags, environment,
// an optional config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rcliao/study-assistant/internal/store"
)

// Config holds all application configuration.
type Config struct {
	Backend    string        `mapstructure:"backend"`
	DB         string        `mapstructure:"db"`
	RedisURL   string        `mapstructure:"redis_url"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	LLM        LLM           `mapstructure:"llm"`
}

// LLM configures the chat completion client.
type LLM struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Defaults.
const (
	DefaultBaseURL  = "https://openrouter.ai/api/v1"
	DefaultModel    = "deepseek/deepseek-chat-v3-0324:free"
	DefaultRedisURL = "redis://localhost:6379/0"
)

// DefaultDBPath returns ~/.study-assistant/study.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".study-assistant", "study.db")
}

// Load reads configuration. Precedence is flags, then STUDY_* environment
// variables, then the config file, then defaults. A .env file in the working
// directory is loaded into the environment first; a missing one is ignored.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("backend", store.KindSQLite)
	v.SetDefault("db", DefaultDBPath())
	v.SetDefault("redis_url", DefaultRedisURL)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", DefaultBaseURL)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1000)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	home, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(home, ".study-assistant"))

	v.SetEnvPrefix("STUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The provider's conventional variable names are honoured as well.
	v.BindEnv("llm.api_key", "STUDY_LLM_API_KEY", "OPENROUTER_API_KEY")
	v.BindEnv("llm.base_url", "STUDY_LLM_BASE_URL", "OPENROUTER_BASE_URL")

	if flags != nil {
		for key, name := range map[string]string{
			"backend":   "backend",
			"db":        "db",
			"redis_url": "redis-url",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case store.KindSQLite:
		if c.DB == "" {
			return fmt.Errorf("config: db path is required for the sqlite backend")
		}
	case store.KindRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: redis_url is required for the redis backend")
		}
	case store.KindMemory:
	default:
		return fmt.Errorf("config: unknown backend %q (valid: sqlite, redis, memory)", c.Backend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config: llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	return nil
}

// StoreOptions returns the backend selection for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{Kind: c.Backend, SQLitePath: c.DB, RedisURL: c.RedisURL}
}
