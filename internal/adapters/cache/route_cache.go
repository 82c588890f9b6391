package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Options configures a RouteCache.
type Options struct {
	// Size bounds the number of entries.
	Size int
	// TTL is how long an entry stays valid after insertion.
	TTL time.Duration
	// Precision is the number of decimals coordinates are rounded to when
	// building keys.
	Precision int
	// Now defaults to time.Now.
	Now func() time.Time
}

type entry struct {
	key      string
	route    domain.Route
	storedAt time.Time
}

// RouteCache is a bounded, TTL-based memo of origin->destination routes.
// When full, a store evicts exactly one entry: the oldest inserted.
// Expired entries are purged lazily on lookup.
type RouteCache struct {
	mu        sync.Mutex
	entries   *lru.Cache[uint64, entry]
	ttl       time.Duration
	precision int
	now       func() time.Time
}

func New(opts Options) (*RouteCache, error) {
	if opts.Size < 1 {
		return nil, errors.New("route cache: size must be positive")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("route cache: ttl must be positive")
	}
	if opts.Precision < 0 || opts.Precision > 10 {
		return nil, fmt.Errorf("route cache: precision %d out of range", opts.Precision)
	}

	entries, err := lru.New[uint64, entry](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("route cache: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &RouteCache{
		entries:   entries,
		ttl:       opts.TTL,
		precision: opts.Precision,
		now:       now,
	}, nil
}

// Lookup returns the cached route for the pair. Absent, expired and
// degenerate entries are misses; expired ones are removed.
func (c *RouteCache) Lookup(origin, destination domain.Coordinates) (domain.Route, bool) {
	key := c.key(origin, destination)
	h := xxhash.Sum64String(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Peek leaves recency untouched so eviction stays in insertion order.
	e, ok := c.entries.Peek(h)
	if !ok || e.key != key {
		obs.CacheLookups.WithLabelValues("miss").Inc()
		return domain.Route{}, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.entries.Remove(h)
		obs.CacheLookups.WithLabelValues("expired").Inc()
		return domain.Route{}, false
	}

	if !e.route.IsRoadFollowing() {
		obs.CacheLookups.WithLabelValues("degenerate").Inc()
		return domain.Route{}, false
	}

	obs.CacheLookups.WithLabelValues("hit").Inc()
	return e.route, true
}

// Store inserts or overwrites the entry for the pair.
func (c *RouteCache) Store(origin, destination domain.Coordinates, route domain.Route) {
	key := c.key(origin, destination)
	h := xxhash.Sum64String(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Overwrites re-insert so the entry ages from now.
	c.entries.Remove(h)
	if evicted := c.entries.Add(h, entry{key: key, route: route, storedAt: c.now()}); evicted {
		obs.CacheEvictions.Inc()
	}
}

func (c *RouteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *RouteCache) key(origin, destination domain.Coordinates) string {
	p := c.precision
	return fmt.Sprintf("%.*f,%.*f|%.*f,%.*f",
		p, origin.Lat, p, origin.Lon, p, destination.Lat, p, destination.Lon)
}
