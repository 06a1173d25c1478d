package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based cache of downloaded documents with a TTL.
// Entries are stored as plain files so they can be opened by path.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key generates a SHA256 hash of the URL to use as a filename.
func (c *Cache) key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x.pdf", hash)
}

// Path returns where the entry for url lives, whether or not it exists.
func (c *Cache) Path(url string) string {
	return filepath.Join(c.path, c.key(url))
}

// Fresh reports whether an unexpired entry exists for url.
// A zero TTL disables the cache.
func (c *Cache) Fresh(url string) bool {
	info, err := os.Stat(c.Path(url))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= c.ttl
}

// Set stores data for url, replacing any previous entry.
func (c *Cache) Set(url string, data []byte) error {
	tmp, err := os.CreateTemp(c.path, ".partial-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path(url)); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
