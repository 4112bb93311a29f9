// Package cache keeps upstream responses between runs so repeated invocations
// inside the TTL do not hit the trending API again.
package cache

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is used when New is given a non-positive TTL.
const DefaultTTL = 30 * time.Minute

func init() {
	gob.Register([]byte{}) // cached response bodies
}

// Cache wraps go-cache with GOB persistence.
type Cache struct {
	inner *gocache.Cache
	ttl   time.Duration
}

// New creates an empty cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{inner: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// LoadFromFile loads a cache from a GOB file. A missing or corrupt file
// yields a fresh cache; the second return value reports a corrupt file.
func LoadFromFile(filename string, ttl time.Duration) (*Cache, error) {
	c := New(ttl)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrapf(err, "read cache %s", filename)
	}
	items := map[string]gocache.Item{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		return c, errors.Wrap(err, "cache decode error (starting fresh)")
	}
	c.inner = gocache.NewFrom(c.ttl, 2*c.ttl, items)
	return c, nil
}

// SaveToFile saves the unexpired items to a GOB file.
func (c *Cache) SaveToFile(filename string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.inner.Items()); err != nil {
		return errors.Wrap(err, "encode cache")
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create cache directory %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(filename, buf.Bytes(), 0o600), "write cache %s", filename)
}

// Get retrieves a value by key.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Set stores a value with the cache TTL.
func (c *Cache) Set(key string, val any) {
	c.inner.Set(key, val, gocache.DefaultExpiration)
}

// ItemCount returns the number of cached items, expired ones included.
func (c *Cache) ItemCount() int {
	return c.inner.ItemCount()
}

// Flush clears all cached items.
func (c *Cache) Flush() {
	c.inner.Flush()
}
