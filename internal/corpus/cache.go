package corpus

import (
	"sync"

	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// Cache holds extracted session metadata keyed by transcript path,
// revalidated against file size and mtime on every lookup. It is purely
// in-memory: nothing is persisted, and every scan still stats the live
// files. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	size    int64
	modUnix int64
	session models.Session
}

// NewCache creates an empty metadata cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached session for path if size and mtime still match.
func (c *Cache) Get(path string, size, modUnix int64) (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || entry.size != size || entry.modUnix != modUnix {
		return models.Session{}, false
	}
	return entry.session, true
}

// Put stores session metadata under its transcript path.
func (c *Cache) Put(session models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[session.FilePath] = cacheEntry{
		size:    session.SizeBytes,
		modUnix: session.ModTimeUnix,
		session: session,
	}
}

// Invalidate drops the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
