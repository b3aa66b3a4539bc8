// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Agent   AgentConfig   `toml:"agent"`
	LLM     LLMConfig     `toml:"llm"`
	Storage StorageConfig `toml:"storage"`
}

// AgentConfig holds orchestration-loop tuning knobs.
type AgentConfig struct {
	MaxActionRounds          int `toml:"max_action_rounds"`
	MaxSameReadActionStreak  int `toml:"max_same_read_action_streak"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

const (
	defaultMaxActionRounds         = 10
	defaultMaxSameReadActionStreak = 10
	capMin                         = 1
	capMax                         = 10
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxActionRounds:         defaultMaxActionRounds,
			MaxSameReadActionStreak: defaultMaxSameReadActionStreak,
		},
		LLM: LLMConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
			BaseURL:  "http://localhost:11434",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scheduleragent.db"
	}
	return filepath.Join(home, ".local", "share", "scheduleragent", "scheduleragent.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "scheduleragent", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := clampedEnvInt("SCHEDULER_MAX_ACTION_ROUNDS", defaultMaxActionRounds); v != 0 {
		cfg.Agent.MaxActionRounds = v
	}
	if v := clampedEnvInt("SCHEDULER_MAX_SAME_READ_ACTION_STREAK", defaultMaxSameReadActionStreak); v != 0 {
		cfg.Agent.MaxSameReadActionStreak = v
	}

	if v := os.Getenv("SCHEDULER_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SCHEDULER_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SCHEDULER_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("SCHEDULER_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
}

// clampedEnvInt reads an int env var and clamps it to [capMin, capMax].
// Returns 0 (a sentinel, never a valid clamped value) if unset, and fallback
// if set but unparsable.
func clampedEnvInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if n < capMin {
		return capMin
	}
	if n > capMax {
		return capMax
	}
	return n
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Agent.MaxActionRounds < capMin || c.Agent.MaxActionRounds > capMax {
		return fmt.Errorf("agent.max_action_rounds must be in [%d,%d]", capMin, capMax)
	}
	if c.Agent.MaxSameReadActionStreak < capMin || c.Agent.MaxSameReadActionStreak > capMax {
		return fmt.Errorf("agent.max_same_read_action_streak must be in [%d,%d]", capMin, capMax)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
