package syntax

import (
	"context"

	"github.com/minio/highwayhash"
)

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns the highwayhash of data.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

type cacheEntry struct {
	tree *Tree
	hash uint64
}

// Cache holds parsed trees keyed by file path for the duration of one run.
// Entries are populated on first parse and never invalidated.
type Cache struct {
	entries map[string]*cacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Parse returns the cached tree for path or parses src and caches it.
func (c *Cache) Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	if entry, ok := c.entries[path]; ok {
		return entry.tree, nil
	}
	tree, err := Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	hash, err := Hash(src)
	if err != nil {
		return nil, err
	}
	c.entries[path] = &cacheEntry{tree: tree, hash: hash}
	return tree, nil
}

// Lookup returns the cached tree for path.
func (c *Cache) Lookup(path string) (*Tree, bool) {
	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	return entry.tree, true
}

// Changed reports whether text differs from the source originally parsed for path.
func (c *Cache) Changed(path string, text []byte) bool {
	entry, ok := c.entries[path]
	if !ok {
		return true
	}
	hash, err := Hash(text)
	if err != nil {
		return true
	}
	return hash != entry.hash
}

// Len returns the number of cached trees.
func (c *Cache) Len() int { return len(c.entries) }
