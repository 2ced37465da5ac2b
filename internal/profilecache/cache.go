// Package profilecache holds the current profile of each signed-in user.
//
// Entries are populated on the first authenticated fetch, marked stale and
// refetched after a successful write, and dropped on sign-out. Cached records
// are never mutated; readers holding an old pointer keep the old snapshot.
package profilecache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/janisto/huma-dashboard/internal/service/profile"
)

// Getter loads a profile from the store.
type Getter interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

type entry struct {
	record *profile.Profile
	stale  bool
}

// Cache is safe for concurrent use. Concurrent loads for the same user share
// one store call.
//
// Every user has a generation that Invalidate, Refresh and Clear advance. A
// load only stores its result when the generation it started under is still
// current, and loads of different generations never share a flight, so a
// fetch that began before a write cannot publish the pre-write record.
type Cache struct {
	store   Getter
	mu      sync.RWMutex
	entries map[string]*entry
	gens    map[string]uint64
	group   singleflight.Group
}

// New creates an empty cache over store.
func New(store Getter) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached record, loading it when missing or stale.
func (c *Cache) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	gen := c.gens[userID]
	c.mu.RUnlock()
	if ok && !e.stale {
		return e.record, nil
	}
	return c.load(ctx, userID, gen)
}

// Refresh marks userID stale and refetches it. The refetch never joins a
// load that started before the call.
func (c *Cache) Refresh(ctx context.Context, userID string) (*profile.Profile, error) {
	c.mu.Lock()
	gen := c.advance(userID)
	c.mu.Unlock()
	return c.load(ctx, userID, gen)
}

// Invalidate marks the entry stale without fetching.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance(userID)
}

// Clear drops the entry, as on sign-out.
func (c *Cache) Clear(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance(userID)
	delete(c.entries, userID)
}

// Peek returns the cached record without loading. stale reports whether it is
// awaiting a refetch.
func (c *Cache) Peek(userID string) (record *profile.Profile, stale, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[userID]
	if !ok {
		return nil, false, false
	}
	return e.record, e.stale, true
}

// advance bumps the generation and marks any entry stale. c.mu must be held.
func (c *Cache) advance(userID string) uint64 {
	c.gens[userID]++
	if e, ok := c.entries[userID]; ok && !e.stale {
		c.entries[userID] = &entry{record: e.record, stale: true}
	}
	return c.gens[userID]
}

func (c *Cache) load(ctx context.Context, userID string, gen uint64) (*profile.Profile, error) {
	key := userID + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		p, err := c.store.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[userID] == gen {
			c.entries[userID] = &entry{record: p}
		}
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*profile.Profile), nil
}
