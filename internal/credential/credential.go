// Package credential stores provider API keys in ~/.reword/credentials.yaml.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/reword/internal/provider"
)

// ErrNotFound means no key is configured for the provider.
var ErrNotFound = errors.New("no API key configured")

// fileName is the credentials file inside the settings directory.
const fileName = "credentials.yaml"

// envVars maps provider names to the environment variable checked first.
var envVars = map[string]string{
	provider.NameOpenAI:    "OPENAI_API_KEY",
	provider.NameAnthropic: "ANTHROPIC_API_KEY",
}

// fileKey is the YAML key a provider's credential is saved under.
func fileKey(providerName string) string {
	return providerName + "_api_key"
}

// EnvVar returns the environment variable consulted for a provider, or "".
func EnvVar(providerName string) string {
	return envVars[providerName]
}

// Store reads and writes the credentials file. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by dir/credentials.yaml.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// Path returns the credentials file location.
func (s *Store) Path() string {
	return s.path
}

// Source describes where a resolved key came from.
type Source string

const (
	SourceEnv  Source = "environment"
	SourceFile Source = "file"
	SourceNone Source = "none"
)

// Resolve returns the key for a provider. The environment wins over the
// file. The mock provider needs no key and resolves to a placeholder.
func (s *Store) Resolve(providerName string) (string, Source, error) {
	if providerName == provider.NameMock {
		return "mock", SourceNone, nil
	}
	if env := EnvVar(providerName); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, SourceEnv, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return "", SourceNone, err
	}
	if v := strings.TrimSpace(keys[fileKey(providerName)]); v != "" {
		return v, SourceFile, nil
	}
	return "", SourceNone, fmt.Errorf("%s: %w", providerName, ErrNotFound)
}

// Set saves key for a provider, creating the file with owner-only
// permissions.
func (s *Store) Set(providerName, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	keys[fileKey(providerName)] = key
	return s.write(keys)
}

// Clear removes the saved key for a provider. Clearing a missing key is
// not an error.
func (s *Store) Clear(providerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := keys[fileKey(providerName)]; !ok {
		return nil
	}
	delete(keys, fileKey(providerName))
	return s.write(keys)
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	keys := map[string]string{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if keys == nil {
		keys = map[string]string{}
	}
	return keys, nil
}

func (s *Store) write(keys map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := yaml.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves half a file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Mask hides all but the last four characters of a key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
