// Package cache stores analysed series on disk keyed by the content of the
// landmark input and the analysis settings.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/series"
)

// keyVersion changes whenever scoring semantics change, invalidating old
// entries.
const keyVersion = "rula-series-v1"

// Cache provides caching for analysed series.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory. An empty
// directory disables the cache.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// CacheKey generates a unique key for analysing the file at inputPath.
// The key is based on:
// - the raw input bytes (compressed inputs hash as stored)
// - the frame rate used for default timestamps
// - the detector thresholds
func CacheKey(inputPath string, fps float64, t posture.Thresholds) (string, error) {
	h := sha256.New()

	if err := writeString(h, keyVersion); err != nil {
		return "", err
	}
	if err := hashFile(h, inputPath); err != nil {
		return "", fmt.Errorf("hashing input %s: %w", inputPath, err)
	}
	if err := writeString(h, strconv.FormatFloat(fps, 'g', -1, 64)); err != nil {
		return "", err
	}

	thresholdsJSON, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshaling thresholds: %w", err)
	}
	if _, err := h.Write(thresholdsJSON); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached series if it exists.
func (c *Cache) Get(key string) (*series.Series, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil, false
	}

	var s series.Series
	if err := json.Unmarshal(data, &s); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}
	return &s, true
}

// Put stores a series in the cache.
func (c *Cache) Put(key string, s *series.Series) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling series: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove a directory that looks like ours: nothing but .json files.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// null byte delimiter prevents collisions between adjacent fields
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func hashFile(h io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	_, err = io.Copy(h, f)
	return err
}
