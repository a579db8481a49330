// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// Process içi, map tabanlı cache. Tek instance'lı kurulumlar ve testler
// için. Süresi dolan kayıtlar okunurken yok sayılır ve arka planda
// periyodik olarak temizlenir.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero value = süresiz
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache, thread-safe bellek içi cache.
type MemoryCache struct {
	mu     sync.RWMutex
	store  map[string]memoryEntry
	logger *log.Logger
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache, yeni bir MemoryCache oluşturur ve gcInterval > 0 ise
// temizlik goroutine'ini başlatır. Close ile durdurulur.
func NewMemoryCache(logger *log.Logger, gcInterval time.Duration) *MemoryCache {
	m := &MemoryCache{
		store:  make(map[string]memoryEntry),
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if gcInterval > 0 {
		go m.collect(gcInterval)
	}

	logger.Println("✅ Memory cache başlatıldı")
	return m
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.store[key]
	if !ok || entry.expired(m.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	m.store[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

func (m *MemoryCache) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]memoryEntry)
	m.logger.Println("⚠️  Memory cache tamamen temizlendi")
	return nil
}

// Close, temizlik goroutine'ini durdurur.
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryCache) collect(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpiredEntries()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryCache) cleanExpiredEntries() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cleaned := 0
	for key, entry := range m.store {
		if entry.expired(now) {
			delete(m.store, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Printf("🔄 Memory cache GC: %d expired entry temizlendi", cleaned)
	}
}
