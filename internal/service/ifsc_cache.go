package service

import (
	"strings"
	"sync"
	"time"
)

// IFSCCache remembers IFSC lookups for ttl. Branch codes change rarely.
type IFSCCache struct {
	mu      sync.RWMutex
	entries map[string]ifscEntry
	ttl     time.Duration
}

type ifscEntry struct {
	details  *IFSCDetails
	cachedAt time.Time
}

func NewIFSCCache(ttl time.Duration) *IFSCCache {
	return &IFSCCache{entries: make(map[string]ifscEntry), ttl: ttl}
}

func (c *IFSCCache) Get(code string) *IFSCDetails {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[strings.ToUpper(code)]
	if !ok || time.Since(e.cachedAt) > c.ttl {
		return nil
	}
	return e.details
}

func (c *IFSCCache) Set(code string, details *IFSCDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[strings.ToUpper(code)] = ifscEntry{details: details, cachedAt: time.Now()}
}
