package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// isolate points HOME at a temp dir and clears reword's variables.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"REWORD_PROVIDER", "REWORD_MODEL", "REWORD_BASE_URL", "REWORD_IDLE_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return home, work
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Provider != "openai" || cfg.Model != "gpt-4" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadNoFiles(t *testing.T) {
	_, work := isolate(t)

	cfg, err := Load(work)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(home, DirName, "config.yaml"), `provider: openai
model: gpt-4o
temperature: 0.3
idle_timeout: 45s
typing_delay: 5ms
`)
	writeFile(t, filepath.Join(work, LocalFile), `model: gpt-4o-mini
max_tokens: 900
render: false
`)

	cfg, err := Load(work)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("project file should win for model, got %q", cfg.Model)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3 from global file", cfg.Temperature)
	}
	if cfg.IdleTimeout != 45*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
	if cfg.TypingDelay != 5*time.Millisecond {
		t.Errorf("TypingDelay = %v", cfg.TypingDelay)
	}
	if cfg.MaxTokens != 900 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if cfg.Render {
		t.Error("Render should be false from project file")
	}
	if !cfg.Wrap {
		t.Error("Wrap should keep its default")
	}
}

func TestLoadProviderSwitchUsesProviderDefaultModel(t *testing.T) {
	_, work := isolate(t)

	writeFile(t, filepath.Join(work, LocalFile), "provider: anthropic\n")

	cfg, err := Load(work)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Model != DefaultModel("anthropic") {
		t.Errorf("got provider %q model %q", cfg.Provider, cfg.Model)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	_, work := isolate(t)

	writeFile(t, filepath.Join(work, LocalFile), "model: gpt-4o\n")
	t.Setenv("REWORD_PROVIDER", "mock")
	t.Setenv("REWORD_BASE_URL", "http://localhost:8089/v1")
	t.Setenv("REWORD_IDLE_TIMEOUT", "5s")

	cfg, err := Load(work)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != "mock" || cfg.Model != "mock" {
		t.Errorf("got provider %q model %q", cfg.Provider, cfg.Model)
	}
	if cfg.BaseURL != "http://localhost:8089/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.IdleTimeout != 5*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	_, work := isolate(t)
	t.Setenv("REWORD_TEST_DOTENV", "")
	os.Unsetenv("REWORD_TEST_DOTENV")

	writeFile(t, filepath.Join(work, ".env"), "REWORD_TEST_DOTENV=from-file\nREWORD_MODEL=gpt-4-turbo\n")

	cfg, err := Load(work)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := os.Getenv("REWORD_TEST_DOTENV"); got != "from-file" {
		t.Errorf("REWORD_TEST_DOTENV = %q", got)
	}
	// REWORD_MODEL was set (to empty) by isolate, and godotenv does not
	// override existing variables.
	if cfg.Model != "gpt-4" {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

func TestLoadInvalidFiles(t *testing.T) {
	_, work := isolate(t)

	writeFile(t, filepath.Join(work, LocalFile), "temperature: [1, 2\n")
	if _, err := Load(work); err == nil || !strings.Contains(err.Error(), "project config") {
		t.Errorf("expected project config parse error, got %v", err)
	}

	writeFile(t, filepath.Join(work, LocalFile), "provider: bard\n")
	if _, err := Load(work); err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestLoadFileBadYAMLLeavesConfigUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "model: [unterminated\n")

	cfg := Default()
	if err := LoadFile(path, &cfg); err == nil {
		t.Fatal("expected error")
	}
	if cfg != Default() {
		t.Errorf("config changed after failed load: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }, "unknown provider"},
		{"empty model", func(c *Config) { c.Model = "" }, "model is required"},
		{"temperature high", func(c *Config) { c.Temperature = 2.5 }, "temperature"},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, "temperature"},
		{"negative max tokens", func(c *Config) { c.MaxTokens = -1 }, "max_tokens"},
		{"negative idle timeout", func(c *Config) { c.IdleTimeout = -time.Second }, "idle_timeout"},
		{"negative typing delay", func(c *Config) { c.TypingDelay = -time.Millisecond }, "typing_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
