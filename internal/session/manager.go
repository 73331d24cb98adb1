// Package session serializes work per key. The router keys it by container
// so a view, menu or modal never handles two interactions at once.
package session

import (
	"sync"
	"time"
)

// Manager hands out one mutex per key. Different keys run in parallel.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu       sync.Mutex
	lastUsed time.Time
	holders  int
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*keyLock),
	}
}

// WithLock executes fn while holding the mutex for key.
func (m *Manager) WithLock(key string, fn func() error) error {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{}
		m.locks[key] = kl
	}
	kl.holders++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		kl.holders--
		m.mu.Unlock()
	}()

	kl.mu.Lock()
	defer kl.mu.Unlock()

	kl.lastUsed = time.Now()
	return fn()
}

// Cleanup removes idle locks not used within maxAge.
func (m *Manager) Cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, kl := range m.locks {
		if kl.holders == 0 && now.Sub(kl.lastUsed) > maxAge {
			delete(m.locks, key)
		}
	}
}

// Forget drops the lock for key if nobody holds or waits on it.
func (m *Manager) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kl, ok := m.locks[key]; ok && kl.holders == 0 {
		delete(m.locks, key)
	}
}

// Len is the number of tracked keys.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
