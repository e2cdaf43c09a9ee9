package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched reading is served before it is refetched.
const DefaultTTL = 300 * time.Second

// Fetcher returns current weather for a coordinate.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (domain.WeatherPayload, error)
}

// CachedWeather wraps a Fetcher with a TTL-bounded, size-bounded cache.
// Lookups never fail: provider errors degrade to an empty payload.
type CachedWeather struct {
	inner   Fetcher
	ttl     time.Duration
	clock   clockwork.Clock
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedWeather creates a cache decorator around a weather fetcher.
func NewCachedWeather(inner Fetcher, ttl time.Duration, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *CachedWeather {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedWeather{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
		logger:  logger,
	}
}

// GetWeather returns the reading for (lat, lon), fetching when there is no
// entry younger than the TTL. Concurrent misses on one key share a fetch.
func (c *CachedWeather) GetWeather(ctx context.Context, lat, lon float64) domain.WeatherPayload {
	key := cacheKey(lat, lon)
	if e, ok := c.cache.get(key); ok && !isExpired(e, c.clock.Now(), c.ttl) {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return e.value
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		payload, err := c.inner.Current(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, payload, c.clock.Now())
		return payload, nil
	})
	if err != nil {
		c.logger.Warn("live weather fetch failed", "error", err, "lat", lat, "lon", lon)
		// A failed refresh leaves any still-valid entry in place.
		if e, ok := c.cache.get(key); ok && !isExpired(e, c.clock.Now(), c.ttl) {
			return e.value
		}
		return domain.WeatherPayload{}
	}
	return v.(domain.WeatherPayload)
}

// cacheKey rounds to two decimals (~1 km) so repeated clicks on one spot share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// isExpired reports whether an entry fetched at e.fetchedAt is stale at now.
func isExpired(e entry, now time.Time, ttl time.Duration) bool {
	return now.Sub(e.fetchedAt) >= ttl
}

// lruCache is a simple thread-safe LRU cache of timestamped weather readings.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*node
	head       *node // most recently used
	tail       *node // least recently used
}

type entry struct {
	key       string
	value     domain.WeatherPayload
	fetchedAt time.Time
}

type node struct {
	entry
	prev *node
	next *node
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*node),
	}
}

func (c *lruCache) get(key string) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return entry{}, false
	}
	c.moveToFront(n)
	return n.entry, true
}

// put stores a reading; the last writer wins on both payload and timestamp.
func (c *lruCache) put(key string, value domain.WeatherPayload, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		n.fetchedAt = fetchedAt
		c.moveToFront(n)
		return
	}

	n := &node{entry: entry{key: key, value: value, fetchedAt: fetchedAt}}
	c.entries[key] = n
	c.addToFront(n)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(n *node) {
	if n == c.head {
		return
	}
	c.remove(n)
	c.addToFront(n)
}

func (c *lruCache) addToFront(n *node) {
	n.next = c.head
	n.prev = nil
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *lruCache) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
