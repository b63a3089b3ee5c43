package cache

import (
	"context"
	"sync"
	"time"

	"github.com/inventra/backend/internal/application/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache, suitable for single-instance
// deployments and tests. A background goroutine sweeps expired entries.
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemory creates an in-memory cache and starts its sweep goroutine
func NewMemory() *Memory {
	m := &Memory{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweepLoop()
	return m
}

// Get implements ports.Cache
func (m *Memory) Get(_ context.Context, namespace, tenantID, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[cacheKey(namespace, tenantID, key)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set implements ports.Cache
func (m *Memory) Set(_ context.Context, namespace, tenantID, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cacheKey(namespace, tenantID, key)] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete implements ports.Cache
func (m *Memory) Delete(_ context.Context, namespace, tenantID, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cacheKey(namespace, tenantID, key))
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
	return nil
}

// Size returns the number of entries, including not-yet-swept expired ones
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func cacheKey(namespace, tenantID, key string) string {
	return namespace + ":" + tenantID + ":" + key
}

var _ ports.Cache = (*Memory)(nil)
