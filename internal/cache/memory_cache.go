package cache

import (
	"codelive/internal/model"
	"context"
	"sync"
)

// memoryCache is a map-backed SessionCache for tests and single-node runs
type memoryCache struct {
	mu    sync.RWMutex
	metas map[string]*model.SessionMeta
}

// NewMemoryCache creates an in-memory session cache
func NewMemoryCache() SessionCache {
	return &memoryCache{
		metas: make(map[string]*model.SessionMeta),
	}
}

func (c *memoryCache) SetMeta(_ context.Context, code string, meta *model.SessionMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *meta
	c.metas[code] = &copied
	return nil
}

func (c *memoryCache) GetMeta(_ context.Context, code string) (*model.SessionMeta, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, exists := c.metas[code]
	if !exists {
		return nil, nil
	}
	copied := *meta
	return &copied, nil
}

func (c *memoryCache) SetInactive(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if meta, exists := c.metas[code]; exists {
		meta.IsActive = false
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, code string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.metas[code]
	return exists, nil
}
