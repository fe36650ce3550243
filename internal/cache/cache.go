package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores rendered pages keyed by URL so a re-run within a session does
// not spend another rendering-API call for the same page.
type Cache interface {
	// Get retrieves a cached page by key.
	Get(key string) (*models.Page, bool)

	// Set stores a page in cache with the specified TTL.
	Set(key string, page *models.Page, ttl time.Duration) error

	// Delete removes a cached page by key.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Close performs cleanup and stops background goroutines.
	Close()
}

// cacheEntry represents a cached page with expiry metadata
type cacheEntry struct {
	Page      *models.Page
	ExpiresAt time.Time
	Key       string // For LRU tracking
}

// MemoryCache implements in-memory page caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64 // Maximum cache size in bytes
	size    int64 // Current size in bytes
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // Default: 100MB
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached page and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.removeElement(element)
		mc.mu.Unlock()
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Page, true
}

// Set stores a page in cache with TTL
func (mc *MemoryCache) Set(key string, page *models.Page, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	size := entrySize(page)

	// Update existing entry in place
	if element, exists := mc.store[key]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= entrySize(oldEntry.Page)

		element.Value = &cacheEntry{
			Page:      page,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
		}
		mc.lruList.MoveToFront(element)
		mc.size += size

		log.Debug().
			Str("key", key).
			Dur("ttl", ttl).
			Int64("size_bytes", size).
			Msg("Updated cache entry")

		return nil
	}

	// Evict least recently used entries until the new page fits
	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Page:      page,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}

	element := mc.lruList.PushFront(entry)
	mc.store[key] = element
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached page")

	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached pages
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Stats returns the hit and miss counters
func (mc *MemoryCache) Stats() (hits, misses uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.hits, mc.misses
}

// evictLRU removes the least recently used entry. Caller must hold mu.
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	entry := element.Value.(*cacheEntry)
	mc.removeElement(element)
	log.Debug().Str("key", entry.Key).Msg("Evicted LRU cache entry")
}

// removeElement removes an element from the list and map. Caller must hold mu.
func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entrySize(entry.Page)
}

// cleanupExpired periodically drops expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-mc.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			mc.mu.Lock()
			for _, element := range mc.store {
				entry := element.Value.(*cacheEntry)
				if now.After(entry.ExpiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// entrySize estimates the memory footprint of a cached page
func entrySize(page *models.Page) int64 {
	if page == nil {
		return 0
	}
	return int64(len(page.HTML)+len(page.URL)) + 512
}
