package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	"github.com/Abinayanafaiq/BotDating/internal/services/profiles"
)

// ProfileCache is a write-through LRU in front of a profile store. Pending
// order queries always go to the backend.
type ProfileCache struct {
	backend profiles.Store
	entries *lru.Cache[int64, model.Profile]

	mu    sync.Mutex
	fills map[int64]*fill
}

// fill tracks backend reads in flight for one key. A write during the read
// marks it stale so the older copy is never cached over the newer one.
type fill struct {
	readers int
	stale   bool
}

func NewProfileCache(backend profiles.Store, size int) (*ProfileCache, error) {
	if backend == nil {
		return nil, fmt.Errorf("profile cache backend is nil")
	}
	if size <= 0 {
		size = 4096
	}

	entries, err := lru.New[int64, model.Profile](size)
	if err != nil {
		return nil, fmt.Errorf("create profile cache: %w", err)
	}
	return &ProfileCache{backend: backend, entries: entries, fills: make(map[int64]*fill)}, nil
}

func (c *ProfileCache) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if p, ok := c.entries.Get(userID); ok {
		return p.Clone(), nil
	}

	f := c.beginFill(userID)
	p, err := c.backend.Get(ctx, userID)
	c.endFill(userID, f, p, err == nil)
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (c *ProfileCache) GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error) {
	if p, ok := c.entries.Get(userID); ok {
		return p.Clone(), nil
	}

	f := c.beginFill(userID)
	p, err := c.backend.GetOrCreate(ctx, userID, username)
	c.endFill(userID, f, p, err == nil)
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Put drops the cached copy when the backend write fails.
func (c *ProfileCache) Put(ctx context.Context, profile model.Profile) error {
	err := c.backend.Put(ctx, profile)

	c.mu.Lock()
	defer c.mu.Unlock()
	if f := c.fills[profile.UserID]; f != nil {
		f.stale = true
	}
	if err != nil {
		c.entries.Remove(profile.UserID)
		return err
	}
	c.entries.Add(profile.UserID, profile.Clone())
	return nil
}

func (c *ProfileCache) beginFill(userID int64) *fill {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.fills[userID]
	if f == nil {
		f = &fill{}
		c.fills[userID] = f
	}
	f.readers++
	return f
}

func (c *ProfileCache) endFill(userID int64, f *fill, p model.Profile, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.readers--
	if f.readers == 0 {
		delete(c.fills, userID)
	}
	if ok && !f.stale {
		c.entries.Add(userID, p.Clone())
	}
}

func (c *ProfileCache) ListWithPendingOrders(ctx context.Context, afterUserID int64, limit int) ([]model.Profile, error) {
	return c.backend.ListWithPendingOrders(ctx, afterUserID, limit)
}

func (c *ProfileCache) FindByPendingOrder(ctx context.Context, orderID string) (model.Profile, error) {
	return c.backend.FindByPendingOrder(ctx, orderID)
}

func (c *ProfileCache) Len() int {
	return c.entries.Len()
}
