// ABOUTME: On-disk cache of synthesized speech payloads
// ABOUTME: Keys base64 speech by language and text so replays skip the API
package speechcache

import (
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores speech payloads as files under dir
type Cache struct {
	dir string
}

// DefaultDir is used when no directory is configured
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "wordbuddy-speech")
}

// New creates the cache directory if needed
func New(dir string) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the cached payload for text in language
func (c *Cache) Get(language, text string) (string, bool) {
	data, err := os.ReadFile(c.path(language, text))
	if err != nil {
		return "", false
	}
	log.Printf("Speech cache hit: %s/%s", language, text)
	return string(data), true
}

// Put stores a payload; an existing entry is replaced
func (c *Cache) Put(language, text, payload string) error {
	path := c.path(language, text)

	tmp, err := os.CreateTemp(c.dir, "speech-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}

	if _, err := tmp.WriteString(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save speech: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save speech: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store speech: %w", err)
	}

	log.Printf("Speech cached: %s", path)
	return nil
}

// Cleanup removes every cached payload
func (c *Cache) Cleanup() error {
	return os.RemoveAll(c.dir)
}

// path maps language and text to a cache file
func (c *Cache) path(language, text string) string {
	key := strings.ToLower(strings.TrimSpace(language)) + "\x00" + strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.b64", hash[:16]))
}
