package cache

import (
	"context"
	"sync"
	"time"

	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/ports"
)

// MemorySnapshotCache keeps the snapshot in process when Redis is not configured.
type MemorySnapshotCache struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
	storedAt time.Time
	ok       bool
	ttl      time.Duration
	now      func() time.Time
}

var _ ports.SnapshotCache = (*MemorySnapshotCache)(nil)

// NewMemorySnapshotCache expires entries after ttl; zero keeps them forever.
func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{ttl: ttl, now: time.Now}
}

func (c *MemorySnapshotCache) Load(_ context.Context) (domain.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ok {
		return domain.Snapshot{}, false, nil
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) > c.ttl {
		return domain.Snapshot{}, false, nil
	}
	return c.snapshot, true, nil
}

func (c *MemorySnapshotCache) Store(_ context.Context, snapshot domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snapshot
	c.storedAt = c.now()
	c.ok = true
	return nil
}
