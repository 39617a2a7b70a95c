// Package storecache memoizes store directories for the lifetime of a session
// and answers proximity queries against them.
package storecache

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// DirectorySource fetches one chain's full store directory.
type DirectorySource interface {
	StoreDirectory(ctx context.Context, chain string) ([]model.Store, error)
}

// Cache holds one directory per chain. Concurrent first requests for a chain
// share a single fetch. A failed fetch is not remembered, so the next Get
// starts a fresh one. Successful directories are kept until the Cache is
// discarded; there is no expiry.
type Cache struct {
	src   DirectorySource
	group singleflight.Group

	mu    sync.RWMutex
	ready map[string][]model.Store
}

// New creates an empty Cache over src.
func New(src DirectorySource) *Cache {
	return &Cache{
		src:   src,
		ready: make(map[string][]model.Store),
	}
}

func (c *Cache) cached(chain string) ([]model.Store, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stores, ok := c.ready[chain]
	return stores, ok
}

// Get returns the directory for chain, fetching it on first use. The shared
// fetch runs detached from ctx so one caller giving up never fails the others;
// ctx only bounds how long this caller waits.
func (c *Cache) Get(ctx context.Context, chain string) ([]model.Store, error) {
	if stores, ok := c.cached(chain); ok {
		return stores, nil
	}

	ch := c.group.DoChan(chain, func() (any, error) {
		if stores, ok := c.cached(chain); ok {
			return stores, nil
		}
		log := zap.L().With(zap.String("component", "storecache"), zap.String("chain", chain))
		log.Debug("fetching store directory")

		stores, err := c.src.StoreDirectory(context.WithoutCancel(ctx), chain)
		if err != nil {
			log.Warn("store directory fetch failed", zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		c.ready[chain] = stores
		c.mu.Unlock()
		log.Info("store directory cached", zap.Int("stores", len(stores)))
		return stores, nil
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "storecache: wait for %s", chain)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Store), nil
	}
}

// Nearby returns the chain's stores within radiusKm of origin, closest first.
// Stores without valid coordinates are never returned.
func (c *Cache) Nearby(ctx context.Context, chain string, origin geo.Coordinate, radiusKm float64) ([]geo.Near[model.Store], error) {
	stores, err := c.Get(ctx, chain)
	if err != nil {
		return nil, err
	}
	return geo.Nearby(stores, origin, radiusKm), nil
}

// Cached reports whether chain's directory is already held.
func (c *Cache) Cached(chain string) bool {
	_, ok := c.cached(chain)
	return ok
}
