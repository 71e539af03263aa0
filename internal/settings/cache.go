package settings

import (
	"sync"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
)

// Cache holds decoded settings between reads. Entries never expire on their
// own; writers invalidate explicitly after a successful update.
type Cache interface {
	Get(key string) (*models.Setting, bool)
	Put(key string, setting models.Setting)
	Invalidate(key string)
	InvalidateAll()
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.Setting
}

// NewMemoryCache returns an in-process settings cache.
func NewMemoryCache() Cache {
	return &memoryCache{entries: map[string]models.Setting{}}
}

func (c *memoryCache) Get(key string) (*models.Setting, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	copied := entry
	return &copied, true
}

func (c *memoryCache) Put(key string, setting models.Setting) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = setting
}

func (c *memoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]models.Setting{}
}
