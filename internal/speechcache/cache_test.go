// ABOUTME: Tests for the speech cache
// ABOUTME: Tests hits, misses, key normalization and cleanup
package speechcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "speech")

	c, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache directory was not created: %v", err)
	}
}

func TestPutGet(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if _, ok := c.Get("Spanish", "Perro"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Put("Spanish", "Perro", "AEAAwA=="); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, ok := c.Get("Spanish", "Perro")
	if !ok || got != "AEAAwA==" {
		t.Errorf("expected cached payload, got %q (hit=%v)", got, ok)
	}

	// Language is case-insensitive; surrounding space is ignored
	if _, ok := c.Get("spanish", " Perro "); !ok {
		t.Error("expected normalized key to hit")
	}

	// Same text in another language is a different entry
	if _, ok := c.Get("Italian", "Perro"); ok {
		t.Error("expected miss for a different language")
	}
}

func TestPutReplaces(t *testing.T) {
	c, _ := New(t.TempDir())

	c.Put("French", "Chat", "old")
	c.Put("French", "Chat", "new")

	if got, _ := c.Get("French", "Chat"); got != "new" {
		t.Errorf("expected replaced payload, got %q", got)
	}

	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 1 {
		t.Errorf("expected 1 cache file, got %d", len(entries))
	}
}

func TestCleanup(t *testing.T) {
	c, _ := New(filepath.Join(t.TempDir(), "speech"))
	c.Put("German", "Hund", "payload")

	if err := c.Cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(c.Dir()); !os.IsNotExist(err) {
		t.Error("expected cache directory to be removed")
	}
}
