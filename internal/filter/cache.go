package filter

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
)

// ResultCache memoizes evaluation results. Entries are keyed by the
// query, the criteria and the repository version, so any repository
// mutation naturally invalidates every prior key. It is a pure
// optimization: a hit returns exactly what Evaluate would have.
type ResultCache struct {
	cache *ccache.Cache[[]domain.Listing]
	ttl   time.Duration
}

// NewResultCache creates a result cache holding at most maxSize entries
func NewResultCache(maxSize int64, ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: ccache.New(ccache.Configure[[]domain.Listing]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

// Key builds a cache key from the evaluation inputs
func (c *ResultCache) Key(query string, criteria domain.SearchCriteria, version uint64) string {
	keyParts := []string{
		fmt.Sprintf("query:%s", query),
		fmt.Sprintf("min_price:%d", criteria.MinPrice),
		fmt.Sprintf("max_price:%d", criteria.MaxPrice),
		fmt.Sprintf("bedrooms:%v", criteria.Bedrooms),
		fmt.Sprintf("bathrooms:%v", criteria.Bathrooms),
		fmt.Sprintf("types:%v", criteria.PropertyTypes),
		fmt.Sprintf("min_sqft:%d", criteria.MinSqft),
		fmt.Sprintf("max_sqft:%d", criteria.MaxSqft),
		fmt.Sprintf("version:%d", version),
	}
	hash := md5.Sum([]byte(strings.Join(keyParts, "|")))
	return fmt.Sprintf("results:%x", hash)
}

// Get returns the cached result set for key, if present and fresh
func (c *ResultCache) Get(key string) ([]domain.Listing, bool) {
	item := c.cache.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

// Set stores a result set under key
func (c *ResultCache) Set(key string, listings []domain.Listing) {
	c.cache.Set(key, listings, c.ttl)
}
