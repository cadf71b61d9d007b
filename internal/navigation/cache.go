package navigation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	// DefaultMenu is the menu that drives the admin sidebar.
	DefaultMenu = "admin_sidebar"
	// DefaultTTL bounds staleness if an invalidation is ever missed.
	DefaultTTL = time.Hour

	keyPrefix = "navigation"
)

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMenu sets the watched menu name.
func WithMenu(name string) CacheOption {
	return func(c *Cache) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.menu = trimmed
		}
	}
}

// WithTTL sets the expiry of cached projections.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger interfaces.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache memoises the group and item projections of one watched menu in a
// CacheProvider. It observes menu writes and evicts both projections
// synchronously when the watched menu changes.
type Cache struct {
	provider interfaces.CacheProvider
	source   Source
	menu     string
	ttl      time.Duration
	logger   interfaces.Logger

	mu       sync.Mutex
	watched  uuid.UUID
	resolved bool
	// generation advances on every Invalidate. A load started under an
	// older generation is returned but never stored.
	generation uint64
}

var _ menus.Observer = (*Cache)(nil)

// NewCache creates the projection cache.
func NewCache(provider interfaces.CacheProvider, source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		provider: provider,
		source:   source,
		menu:     DefaultMenu,
		ttl:      DefaultTTL,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Menu returns the watched menu name.
func (c *Cache) Menu() string {
	return c.menu
}

// GroupsKey is the cache key of the group projection.
func (c *Cache) GroupsKey() string {
	return keyPrefix + ":" + c.menu + ":groups"
}

// ItemsKey is the cache key of the item projection.
func (c *Cache) ItemsKey() string {
	return keyPrefix + ":" + c.menu + ":items"
}

// Groups returns the cached group projection, computing it on a miss.
// Projections substituted after a store failure are returned but not cached.
func (c *Cache) Groups(ctx context.Context) *GroupSet {
	key := c.GroupsKey()
	if cached, ok := c.get(ctx, key).(*GroupSet); ok && cached != nil {
		return cached
	}
	gen := c.currentGeneration()
	set, ok := c.source.LoadGroups(ctx, c.menu)
	if ok {
		c.remember(set.MenuID)
		c.store(ctx, gen, key, set)
	}
	return set
}

// Items returns the cached item projection, computing it on a miss.
func (c *Cache) Items(ctx context.Context) *ItemSet {
	key := c.ItemsKey()
	if cached, ok := c.get(ctx, key).(*ItemSet); ok && cached != nil {
		return cached
	}
	gen := c.currentGeneration()
	set, ok := c.source.LoadItems(ctx, c.menu)
	if ok {
		c.remember(set.MenuID)
		c.store(ctx, gen, key, set)
	}
	return set
}

// Invalidate evicts both projections.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
	if c.provider == nil {
		return nil
	}
	err := errors.Join(
		c.provider.Delete(ctx, c.GroupsKey()),
		c.provider.Delete(ctx, c.ItemsKey()),
	)
	if err != nil {
		c.logger.Error("navigation.cache.invalidate_failed", "menu", c.menu, "error", err)
		return err
	}
	c.logger.Debug("navigation.cache.invalidated", "menu", c.menu)
	return nil
}

// MenuItemChanged invalidates the projections when event belongs to the
// watched menu. Events for other menus are ignored.
func (c *Cache) MenuItemChanged(ctx context.Context, event menus.Event) error {
	id, ok := c.watchedID(ctx)
	if !ok || event.MenuID != id {
		return nil
	}
	if event.Type == menus.EventMenuDeleted {
		c.forget()
	}
	return c.Invalidate(ctx)
}

// watchedID returns the memoised id of the watched menu, resolving it when
// unknown. A menu that does not exist yet is retried on the next call.
func (c *Cache) watchedID(ctx context.Context) (uuid.UUID, bool) {
	c.mu.Lock()
	if c.resolved {
		id := c.watched
		c.mu.Unlock()
		return id, true
	}
	c.mu.Unlock()

	id, ok := c.source.MenuID(ctx, c.menu)
	if !ok {
		return uuid.Nil, false
	}
	c.remember(id)
	return id, true
}

func (c *Cache) remember(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	c.mu.Lock()
	c.watched = id
	c.resolved = true
	c.mu.Unlock()
}

func (c *Cache) forget() {
	c.mu.Lock()
	c.watched = uuid.Nil
	c.resolved = false
	c.mu.Unlock()
}

func (c *Cache) get(ctx context.Context, key string) any {
	if c.provider == nil {
		return nil
	}
	value, err := c.provider.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			c.logger.Warn("navigation.cache.read_failed", "key", key, "error", err)
		}
		return nil
	}
	return value
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// store caches value only while no invalidation happened since gen was
// read. The lock is held across the write so an Invalidate either sees the
// entry and deletes it or bumps the generation first.
func (c *Cache) store(ctx context.Context, gen uint64, key string, value any) {
	if c.provider == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		c.logger.Debug("navigation.cache.load_superseded", "key", key)
		return
	}
	if err := c.provider.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("navigation.cache.write_failed", "key", key, "error", err)
	}
}
