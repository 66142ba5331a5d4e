package resolve

import (
	"slices"
	"time"

	"github.com/projectdiscovery/gcache"
)

// DefaultCacheSize bounds the number of hostnames kept by NewCache when size <= 0.
const DefaultCacheSize = 10000

// Cache maps hostnames to resolved addresses. An empty entry records a lookup that
// returned nothing so it is not retried.
type Cache struct {
	entries gcache.Cache[string, []string]
}

// NewCache builds an LRU cache. A ttl of zero keeps entries until evicted.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	builder := gcache.New[string, []string](size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &Cache{entries: builder.Build()}
}

// Get returns the cached addresses for host and whether an entry exists.
func (c *Cache) Get(host string) ([]string, bool) {
	ips, err := c.entries.Get(host)
	if err != nil {
		return nil, false
	}
	return slices.Clone(ips), true
}

// Set stores ips for host. A nil slice is stored as a miss.
func (c *Cache) Set(host string, ips []string) {
	if ips == nil {
		ips = []string{}
	}
	_ = c.entries.Set(host, slices.Clone(ips))
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.entries.Len(true)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.entries.Purge()
}
