// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	MaxTokens int           `yaml:"max_tokens,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// ImageConfig holds text-to-image provider settings.
type ImageConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url,omitempty"`
	Model   string        `yaml:"model,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	RequestsPerMin int    `yaml:"requests_per_min"`
	Burst          int    `yaml:"burst"`
}

// AgentConfig holds generation loop settings.
type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// StoreConfig holds diagram persistence settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds OpenTelemetry settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout, noop
}

// Config is the top-level application configuration.
type Config struct {
	Server ServerConfig   `yaml:"server"`
	LLM    ProviderConfig `yaml:"llm"`
	Images ImageConfig    `yaml:"images"`
	Agent  AgentConfig    `yaml:"agent"`
	Store  StoreConfig    `yaml:"store"`
	Logger LoggerConfig   `yaml:"logger"`
	Tracer TracerConfig   `yaml:"tracer"`
}

// Default returns a configuration with sensible defaults applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8090",
			RequestsPerMin: 100,
			Burst:          20,
		},
		LLM: ProviderConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 4096,
		},
		Agent:  AgentConfig{MaxIterations: 25},
		Store:  StoreConfig{Path: "doodlegram.db"},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer: TracerConfig{Enabled: false, Exporter: "noop"},
	}
}

// Load reads the config file at path, if it exists, applies environment
// overrides, and validates the result. A missing file is not an error;
// defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides config values from DOODLEGRAM_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOODLEGRAM_ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("DOODLEGRAM_FAL_API_KEY"); v != "" {
		cfg.Images.APIKey = v
	}
	if v := os.Getenv("DOODLEGRAM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DOODLEGRAM_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DOODLEGRAM_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
}

// Validate checks invariants that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (or set DOODLEGRAM_ANTHROPIC_API_KEY)")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
