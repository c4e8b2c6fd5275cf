package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_catalog_cache_hits_total",
		Help: "Product lookups served from the in-memory cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_catalog_cache_misses_total",
		Help: "Product lookups that fell through to storage.",
	})
)

// ProductCache is a size-bounded product cache whose entries expire after ttl.
type ProductCache struct {
	cache *expirable.LRU[string, *Product]
}

func NewProductCache(maxSize int, ttl time.Duration) *ProductCache {
	return &ProductCache{cache: expirable.NewLRU[string, *Product](maxSize, nil, ttl)}
}

func (c *ProductCache) Get(id string) (*Product, bool) {
	p, ok := c.cache.Get(id)
	if ok {
		cacheHitsTotal.Inc()
		return p, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

func (c *ProductCache) Set(p *Product) {
	c.cache.Add(p.ID, p)
}

func (c *ProductCache) Delete(id string) {
	c.cache.Remove(id)
}

func (c *ProductCache) Len() int {
	return c.cache.Len()
}
