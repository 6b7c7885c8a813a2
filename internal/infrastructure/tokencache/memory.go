package tokencache

import (
	"context"
	"sync"
	"time"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache cache de tokens em memória com TTL. Serve de fallback quando o
// Redis não está configurado; não compartilha entre instâncias.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemoryCache constrói o cache em memória.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get devolve o token do usuário ("" quando ausente ou expirado).
func (c *MemoryCache) Get(_ context.Context, userID string) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return "", nil
	}
	return e.token, nil
}

// Set grava o token com TTL.
func (c *MemoryCache) Set(_ context.Context, userID, token string, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[userID] = memoryEntry{token: token, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate descarta o token do usuário.
func (c *MemoryCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
	return nil
}
