package fetch

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/cache"
	"github.com/stahnma/gh-trending/internal/trending"
)

// Cached serves fetches from a response cache before asking next.
type Cached struct {
	next  Fetcher
	cache *cache.Cache
	log   logrus.FieldLogger
}

// NewCached wraps next with c.
func NewCached(next Fetcher, c *cache.Cache, log logrus.FieldLogger) *Cached {
	return &Cached{next: next, cache: c, log: log}
}

// CacheKey is the cache key of a language and period.
func CacheKey(language, period string) string {
	return "trending:" + period + ":" + language
}

func (f *Cached) Fetch(ctx context.Context, language, period string) ([]trending.Record, error) {
	key := CacheKey(language, period)
	if val, found := f.cache.Get(key); found {
		if body, ok := val.([]byte); ok {
			records, err := trending.DecodeRecords(body)
			if err == nil {
				f.log.WithField("key", key).Debug("cache hit")
				return records, nil
			}
			f.log.WithError(err).WithField("key", key).Warn("discarding unreadable cache entry")
		}
	}
	f.log.WithField("key", key).Debug("cache miss")

	records, err := f.next.Fetch(ctx, language, period)
	if err != nil {
		return nil, err
	}
	if body, err := json.Marshal(records); err == nil {
		f.cache.Set(key, body)
	}
	return records, nil
}
