// Package config loads reword's settings from YAML files, the environment
// and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zhubert/reword/internal/provider"
)

// DirName is the per-user settings directory under the home directory.
const DirName = ".reword"

// LocalFile is the per-project override file.
const LocalFile = ".reword.yaml"

// Config holds every tunable setting.
type Config struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	TypingDelay time.Duration `yaml:"typing_delay"`
	Render      bool          `yaml:"render"`
	Wrap        bool          `yaml:"wrap"`
}

// defaultModels is the model used when none is configured.
var defaultModels = map[string]string{
	provider.NameOpenAI:    "gpt-4",
	provider.NameAnthropic: "claude-sonnet-4-20250514",
	provider.NameMock:      "mock",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:    provider.NameOpenAI,
		Model:       defaultModels[provider.NameOpenAI],
		Temperature: 0.7,
		IdleTimeout: 30 * time.Second,
		Render:      true,
		Wrap:        true,
	}
}

// DefaultModel returns the default model for a provider.
func DefaultModel(providerName string) string {
	return defaultModels[providerName]
}

// Dir returns ~/.reword.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// LoadFile reads a YAML file over cfg. Fields absent from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Decode into a copy so a bad file leaves cfg untouched.
	next := *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// A file that switches provider without naming a model gets that
	// provider's default rather than the previous provider's model.
	if next.Provider != cfg.Provider && next.Model == cfg.Model && !mentionsModel(data) {
		next.Model = DefaultModel(next.Provider)
	}

	*cfg = next
	return nil
}

func mentionsModel(data []byte) bool {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw["model"]
	return ok
}

// loadIfExists applies path when it exists.
func loadIfExists(path string, cfg *Config) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return LoadFile(path, cfg)
}

// Load builds the configuration in precedence order: defaults, then
// ~/.reword/config.yaml, then .reword.yaml in workDir, then the
// environment. A .env file in workDir is loaded into the environment first
// without overriding variables that are already set.
func Load(workDir string) (Config, error) {
	cfg := Default()

	envFile := filepath.Join(workDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if dir, err := Dir(); err == nil {
		if err := loadIfExists(filepath.Join(dir, "config.yaml"), &cfg); err != nil {
			return cfg, fmt.Errorf("loading global config: %w", err)
		}
	}

	if err := loadIfExists(filepath.Join(workDir, LocalFile), &cfg); err != nil {
		return cfg, fmt.Errorf("loading project config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("REWORD_PROVIDER"); v != "" {
		if v != cfg.Provider && os.Getenv("REWORD_MODEL") == "" {
			cfg.Model = DefaultModel(v)
		}
		cfg.Provider = v
	}
	if v := os.Getenv("REWORD_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REWORD_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("REWORD_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing REWORD_IDLE_TIMEOUT: %w", err)
		}
		cfg.IdleTimeout = d
	}
	return nil
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	var problems []string
	if !slices.Contains(provider.Names(), c.Provider) {
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.Provider))
	}
	if c.Model == "" {
		problems = append(problems, "model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("temperature %.2f out of range [0, 2]", c.Temperature))
	}
	if c.MaxTokens < 0 {
		problems = append(problems, "max_tokens must not be negative")
	}
	if c.IdleTimeout < 0 {
		problems = append(problems, "idle_timeout must not be negative")
	}
	if c.TypingDelay < 0 {
		problems = append(problems, "typing_delay must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
