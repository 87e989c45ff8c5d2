package services

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/vectorindex/flat"
)

// IndexCache keeps opened user indexes in memory. It holds nothing the
// IndexStore does not already have, so it can be cleared at any time.
//
// Cached indexes are shared between callers and must be treated as
// read-only. Writers load from the store, mutate their own copy, save,
// then call Invalidate.
type IndexCache struct {
	store  driven.IndexStore
	policy EvictionPolicy

	mu      sync.Mutex
	entries map[string]*flat.Index

	// loads tracks users with a load in flight; entries are dropped when
	// the last caller returns. A load installs its result only if neither
	// its user's generation nor the cache epoch moved since it started.
	loads map[string]*pendingLoad
	epoch uint64

	group singleflight.Group
}

type pendingLoad struct {
	generation uint64
	callers    int
}

// NewIndexCache creates a cache over store. A nil policy never evicts.
func NewIndexCache(store driven.IndexStore, policy EvictionPolicy) *IndexCache {
	if policy == nil {
		policy = UnboundedPolicy{}
	}
	return &IndexCache{
		store:   store,
		policy:  policy,
		entries: make(map[string]*flat.Index),
		loads:   make(map[string]*pendingLoad),
	}
}

// GetOrLoad returns the user's cached index, loading it from the store on
// a miss. Concurrent misses for the same user share one store read.
// Store errors, including domain.ErrNotFound, are returned unchanged.
func (c *IndexCache) GetOrLoad(ctx context.Context, userID string) (*flat.Index, error) {
	c.mu.Lock()
	if idx, ok := c.entries[userID]; ok {
		c.policy.Touch(userID)
		c.mu.Unlock()
		return idx, nil
	}
	p := c.loads[userID]
	if p == nil {
		p = &pendingLoad{}
		c.loads[userID] = p
	}
	p.callers++
	gen, epoch := p.generation, c.epoch
	c.mu.Unlock()

	defer c.release(userID, p)

	key := userID + "#" + strconv.FormatUint(epoch, 10) + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := c.store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		idx, err := flat.FromData(data)
		if err != nil {
			return nil, err
		}
		logger.Debug("cache: loaded index for %s (%d chunks)", userID, idx.Len())

		c.mu.Lock()
		defer c.mu.Unlock()
		if p.generation == gen && c.epoch == epoch {
			c.entries[userID] = idx
			for _, evicted := range c.policy.Admit(userID) {
				delete(c.entries, evicted)
			}
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*flat.Index), nil
}

func (c *IndexCache) release(userID string, p *pendingLoad) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.callers--
	if p.callers == 0 && c.loads[userID] == p {
		delete(c.loads, userID)
	}
}

// Invalidate drops the user's entry. It is a no-op when nothing is cached.
func (c *IndexCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	if p := c.loads[userID]; p != nil {
		p.generation++
	}
	c.policy.Remove(userID)
}

// Clear drops every entry.
func (c *IndexCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for userID := range c.entries {
		c.policy.Remove(userID)
	}
	c.entries = make(map[string]*flat.Index)
}

// pendingLoads returns the number of users with a load in flight.
func (c *IndexCache) pendingLoads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loads)
}

// Len returns the number of cached indexes.
func (c *IndexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
