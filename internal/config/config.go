package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Store     StoreConfig      `mapstructure:"store"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type StoreConfig struct {
	DSN     string `mapstructure:"dsn"`
	Enabled bool   `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ProviderConfig declares one backend: credentials, endpoint, its default
// parameter set and the models the operator registers for it.
type ProviderConfig struct {
	ID      string `mapstructure:"id" json:"id" yaml:"id"`
	Type    string `mapstructure:"type" json:"type" yaml:"type"`
	Name    string `mapstructure:"name" json:"name" yaml:"name"`
	APIKey  string `mapstructure:"api_key" json:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	DefaultModel string         `mapstructure:"default_model" json:"default_model" yaml:"default_model"`
	Defaults     DefaultsConfig `mapstructure:"defaults" json:"defaults" yaml:"defaults"`
	Models       []ModelConfig  `mapstructure:"models" json:"models" yaml:"models"`

	// Provider-specific settings (org headers, API versions, ...).
	Config map[string]string `mapstructure:"config" json:"config" yaml:"config"`
}

// DefaultsConfig is the operator-declared default parameter set for a
// provider. Extra keys ride along opaquely.
type DefaultsConfig struct {
	Temperature *float64       `mapstructure:"temperature" json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        *float64       `mapstructure:"top_p" json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens   *int           `mapstructure:"max_tokens" json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Extra       map[string]any `mapstructure:"extra" json:"extra,omitempty" yaml:"extra,omitempty"`
}

type ModelConfig struct {
	Name          string   `mapstructure:"name" json:"name" yaml:"name"`
	Alias         string   `mapstructure:"alias" json:"alias,omitempty" yaml:"alias,omitempty"`
	ContextLength int      `mapstructure:"context_length" json:"context_length,omitempty" yaml:"context_length,omitempty"`
	Capabilities  []string `mapstructure:"capabilities" json:"capabilities" yaml:"capabilities"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.dsn", "file:bridge.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve API Keys declared as ENV:VAR indirections
	for i, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "ENV:") {
			envVar := strings.TrimPrefix(p.APIKey, "ENV:")
			// Check process environment first (explicit override)
			val := os.Getenv(envVar)
			if val == "" {
				// Then check viper (which might have it from other sources)
				val = v.GetString(envVar)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	return &cfg, nil
}
