// Package cache keeps short-lived copies of media API reads, in memory or in
// Redis.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"mediadownloader/web/internal/metrics"
)

const (
	defaultTTL        = 5 * time.Minute
	defaultMaxEntries = 500
)

// Backend stores raw JSON values.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Cache struct {
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a cache over backend. A nil backend disables caching.
func New(backend Backend, options ...Option) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     defaultTTL,
		logger:  slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(c)
		}
	}
	return c
}

func (c *Cache) Enabled() bool {
	return c != nil && c.backend != nil
}

// GetOrLoad returns the cached value for key or calls load and stores its
// result. Backend failures degrade to calling load; load errors are never
// cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	raw, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if err == nil && found {
		var value T
		if decodeErr := json.Unmarshal(raw, &value); decodeErr == nil {
			metrics.CacheHitsTotal.Inc()
			return value, nil
		}
	}
	metrics.CacheMissesTotal.Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if encoded, encodeErr := json.Marshal(value); encodeErr == nil {
		if setErr := c.backend.Set(ctx, key, encoded, c.ttl); setErr != nil {
			c.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
		}
	}
	return value, nil
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is a bounded in-process Backend.
type MemoryBackend struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

func NewMemoryBackend(maxEntries int) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryBackend{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
	}
	m.trimLocked(now)
	return nil
}

func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// trimLocked drops expired entries, then the entries closest to expiry until
// the size bound holds.
func (m *MemoryBackend) trimLocked(now time.Time) {
	if len(m.entries) <= m.maxEntries {
		return
	}
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
	for len(m.entries) > m.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for key, entry := range m.entries {
			if oldestKey == "" || entry.expiresAt.Before(oldest) {
				oldestKey, oldest = key, entry.expiresAt
			}
		}
		delete(m.entries, oldestKey)
	}
}
