package pipeline

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of pipeline variants a Cache keeps before evicting.
const DefaultCacheSize = 8

// Cache keeps recently used pipelines keyed by Key. Evicted and purged pipelines are released.
// A Cache is not safe for concurrent use with pipelines that are still being recorded.
type Cache struct {
	cache *lru.Cache[Key, *Pipeline]
}

// NewCache creates a pipeline cache holding at most size pipelines.
//
// Parameters:
//   - size: the capacity; values < 1 use DefaultCacheSize
//
// Returns:
//   - *Cache: the cache
//   - error: an error if the underlying LRU could not be created
func NewCache(size int) (*Cache, error) {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, err := lru.NewWithEvict[Key, *Pipeline](size, releasePipelineOnEviction)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline cache: %w", err)
	}
	return &Cache{cache: cache}, nil
}

// GetOrCreate returns the cached pipeline for key, building and caching it with create on a miss.
//
// Parameters:
//   - key: the pipeline variant
//   - create: builds the pipeline on a miss
//
// Returns:
//   - *Pipeline: the cached or newly built pipeline
//   - error: the error returned by create
func (c *Cache) GetOrCreate(key Key, create func() (*Pipeline, error)) (*Pipeline, error) {
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}

	p, err := create()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	c.cache.Add(key, p)
	return p, nil
}

// Contains reports whether key is cached without updating its recency.
func (c *Cache) Contains(key Key) bool {
	return c.cache.Contains(key)
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge releases and removes every cached pipeline.
func (c *Cache) Purge() {
	c.cache.Purge()
}

func releasePipelineOnEviction(_ Key, p *Pipeline) {
	p.Release()
}
