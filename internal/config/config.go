// ABOUTME: WordBuddy configuration from .env files and the environment
// ABOUTME: Flags in main override these values
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvOutput   = "WORDBUDDY_OUTPUT"
	EnvSpeaker  = "WORDBUDDY_SPEAKER"
	EnvCacheDir = "WORDBUDDY_CACHE_DIR"
)

// Config holds settings shared by the app and speaker
type Config struct {
	APIKey   string
	Output   string
	Speaker  string
	CacheDir string
}

// Load reads files (default ".env") into the environment, then builds a
// Config. Missing files are ignored; variables already set win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		APIKey:   os.Getenv(EnvAPIKey),
		Output:   os.Getenv(EnvOutput),
		Speaker:  os.Getenv(EnvSpeaker),
		CacheDir: os.Getenv(EnvCacheDir),
	}
	cfg.setDefaults()

	return cfg, nil
}

// setDefaults fills unset fields
func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = "malgo"
	}
}

// Validate checks the settings needed to reach the API
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s is not set", EnvAPIKey)
	}
	if c.Output == "remote" && c.Speaker == "" {
		return fmt.Errorf("remote output needs a speaker address (%s or -speaker)", EnvSpeaker)
	}
	return nil
}
