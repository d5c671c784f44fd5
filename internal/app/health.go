package app

import (
	"context"
	"sync"
	"time"
)

// Database status values reported by /api/health
const (
	DatabaseNotConfigured = "not_configured"
	DatabaseConnected     = "connected"
	DatabaseDisconnected  = "disconnected"
)

// DefaultHealthCacheTTL bounds how often the database is pinged by health checks
const DefaultHealthCacheTTL = 10 * time.Second

// HealthCache remembers the last database ping for a TTL so frequent health
// probes do not each hit the pool. A TTL of 0 disables caching.
type HealthCache struct {
	mu        sync.RWMutex
	healthy   bool
	checkedAt time.Time
	ttl       time.Duration
}

// NewHealthCache creates a HealthCache with the given TTL
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{ttl: ttl}
}

// Get returns the cached result and whether it is still fresh
func (c *HealthCache) Get() (healthy bool, valid bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid = !c.checkedAt.IsZero() && time.Since(c.checkedAt) < c.ttl
	return c.healthy, valid
}

// Set records a fresh result
func (c *HealthCache) Set(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
	c.checkedAt = time.Now()
}

// Invalidate forces the next check to ping
func (c *HealthCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkedAt = time.Time{}
}

// DatabaseStatus pings the repository, reusing a recent result
func (a *App) DatabaseStatus(ctx context.Context) string {
	if a.repo == nil {
		return DatabaseNotConfigured
	}
	if healthy, ok := a.health.Get(); ok {
		return databaseStatus(healthy)
	}

	healthy := a.repo.Health(ctx) == nil
	a.health.Set(healthy)
	return databaseStatus(healthy)
}

func databaseStatus(healthy bool) string {
	if healthy {
		return DatabaseConnected
	}
	return DatabaseDisconnected
}
