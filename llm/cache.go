package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seo-optimizer/seoforge/logging"
	"github.com/seo-optimizer/seoforge/metrics"
	"github.com/seo-optimizer/seoforge/stats"
)

// Cache stores generated suggestion text by key
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value     string
	timestamp time.Time
	ttl       time.Duration
}

// MemoryCache is an in-process TTL cache bounded by entry count
type MemoryCache struct {
	entries         map[string]memoryEntry
	mutex           sync.RWMutex
	maxSize         int
	cleanupInterval time.Duration
	now             func() time.Time
	done            chan struct{}
	closeOnce       sync.Once
}

// NewMemoryCache creates a cache and starts its cleanup goroutine
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	c := &MemoryCache{
		entries:         make(map[string]memoryEntry),
		maxSize:         maxSize,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		done:            make(chan struct{}),
	}
	go c.periodicCleanup()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok || c.now().Sub(entry.timestamp) > entry.ttl {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mutex.Lock()
	c.entries[key] = memoryEntry{value: value, timestamp: c.now(), ttl: ttl}
	over := len(c.entries) > c.maxSize
	c.mutex.Unlock()

	if over {
		c.cleanup()
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *MemoryCache) periodicCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

// cleanup removes expired entries and then the oldest ones above maxSize
func (c *MemoryCache) cleanup() {
	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > entry.ttl {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxSize {
		return
	}

	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-c.maxSize; i++ {
		delete(c.entries, entries[i].key)
	}
}

// RedisCache shares suggestions between instances
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisCache wraps client, namespacing keys with prefix
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// CachedSuggester serves repeated prompts from a Cache
type CachedSuggester struct {
	next    Suggester
	cache   Cache
	ttl     time.Duration
	log     logging.Logger
	metrics *metrics.Metrics
	stats   *stats.Storage
}

// CacheOptions configures a CachedSuggester. Metrics and Stats may be nil.
type CacheOptions struct {
	TTL     time.Duration
	Logger  logging.Logger
	Metrics *metrics.Metrics
	Stats   *stats.Storage
}

// NewCachedSuggester wraps next with cache
func NewCachedSuggester(next Suggester, cache Cache, opts CacheOptions) *CachedSuggester {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedSuggester{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		log:     log,
		metrics: opts.Metrics,
		stats:   opts.Stats,
	}
}

func (c *CachedSuggester) Name() string {
	return c.next.Name()
}

// Generate returns a cached response when present. Cache failures are
// logged and the call falls through to the provider. Failed generations
// are never cached.
func (c *CachedSuggester) Generate(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(c.next.Name(), prompt)

	cached, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("Suggestion cache read failed", logging.String("provider", c.next.Name()), logging.Err(err))
	}
	c.metrics.ObserveCacheLookup(hit)
	c.stats.RecordCacheLookup(hit)
	if hit {
		return cached, nil
	}

	text, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		c.log.Warn("Suggestion cache write failed", logging.String("provider", c.next.Name()), logging.Err(err))
	}
	return text, nil
}

func cacheKey(provider, prompt string) string {
	hash := md5.Sum([]byte(provider + "\x00" + prompt))
	return hex.EncodeToString(hash[:])
}
