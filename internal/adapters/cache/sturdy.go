package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Config sizes the in-process cache.
type Config struct {
	Capacity int
	Shards   int
	// MaxTTL bounds every entry. Per call TTLs above it are clamped.
	MaxTTL time.Duration
	// EvictionPercentage is the share of a full shard dropped on insert.
	EvictionPercentage int
	Now                func() time.Time
}

// DefaultConfig returns sizing suitable for navigation projections and
// settings lookups.
func DefaultConfig() Config {
	return Config{
		Capacity:           1024,
		Shards:             8,
		MaxTTL:             24 * time.Hour,
		EvictionPercentage: 10,
		Now:                time.Now,
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Provider implements interfaces.CacheProvider on top of sturdyc. sturdyc
// applies one TTL per client, so each entry carries its own deadline and
// is treated as a miss once it passes.
type Provider struct {
	cfg Config

	mu     sync.RWMutex
	client *sturdyc.Client[entry]
}

var _ interfaces.CacheProvider = (*Provider)(nil)

// New builds a provider. Zero fields in cfg fall back to DefaultConfig.
func New(cfg Config) *Provider {
	defaults := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = defaults.Shards
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = defaults.MaxTTL
	}
	if cfg.EvictionPercentage <= 0 {
		cfg.EvictionPercentage = defaults.EvictionPercentage
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	p := &Provider{cfg: cfg}
	p.client = p.newClient()
	return p
}

func (p *Provider) newClient() *sturdyc.Client[entry] {
	return sturdyc.New[entry](p.cfg.Capacity, p.cfg.Shards, p.cfg.MaxTTL, p.cfg.EvictionPercentage)
}

func (p *Provider) Get(_ context.Context, key string) (any, error) {
	key = strings.TrimSpace(key)
	p.mu.RLock()
	e, ok := p.client.Get(key)
	p.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !p.cfg.Now().Before(e.expiresAt) {
		p.mu.RLock()
		p.client.Delete(key)
		p.mu.RUnlock()
		return nil, interfaces.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value for ttl. A non-positive ttl uses the provider maximum.
func (p *Provider) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 || ttl > p.cfg.MaxTTL {
		ttl = p.cfg.MaxTTL
	}
	p.mu.RLock()
	p.client.Set(strings.TrimSpace(key), entry{value: value, expiresAt: p.cfg.Now().Add(ttl)})
	p.mu.RUnlock()
	return nil
}

func (p *Provider) Delete(_ context.Context, key string) error {
	p.mu.RLock()
	p.client.Delete(strings.TrimSpace(key))
	p.mu.RUnlock()
	return nil
}

// Clear drops every entry by swapping in a fresh client.
func (p *Provider) Clear(context.Context) error {
	p.mu.Lock()
	p.client = p.newClient()
	p.mu.Unlock()
	return nil
}

// Size reports the number of stored entries, expired ones included.
func (p *Provider) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client.Size()
}
