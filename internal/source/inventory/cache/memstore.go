package cache

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"gitlab.com/fleetops/whitelistd/internal/config"
)

type memstore struct {
	store *cache.Cache
	mux   *sync.RWMutex
}

func newMemStore(cc *config.Cache) Store {
	return &memstore{
		store: cache.New(cc.CacheExpiry, cc.CacheCleanupInterval),
		mux:   &sync.RWMutex{},
	}
}

// LoadOrCreate writes or retrieves a cache entry in a thread-safe way,
// trying to make this read-preferring RW locking.
func (m *memstore) LoadOrCreate(key string, retrieve retrieveFunc) *Entry {
	m.mux.RLock()
	entry, exists := m.store.Get(key)
	m.mux.RUnlock()

	if exists {
		return entry.(*Entry)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	if entry, exists = m.store.Get(key); exists {
		return entry.(*Entry)
	}

	newEntry := newCacheEntry(key, retrieve)
	m.store.SetDefault(key, newEntry)

	return newEntry
}

// Remove deletes the entry stored under key, but only if it still is the
// given one. A concurrent retrieval may already have replaced it.
func (m *memstore) Remove(key string, entry *Entry) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if current, exists := m.store.Get(key); exists && current.(*Entry) == entry {
		m.store.Delete(key)
	}
}
