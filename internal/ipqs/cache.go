package ipqs

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheKeyPrefix = "ipqs:"

// CachedClient caches successful lookups per IP in Redis, msgpack-encoded.
// Cache trouble degrades to a direct lookup, never to a request failure.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration

	// observers for metrics; nil-safe
	OnHit  func()
	OnMiss func()
}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedClient) Lookup(ctx context.Context, ip, userAgent string) (*Result, error) {
	key := cacheKeyPrefix + ip

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached Result
		if err := msgpack.Unmarshal(raw, &cached); err == nil {
			if c.OnHit != nil {
				c.OnHit()
			}
			cached.FromCache = true
			return &cached, nil
		}
		log.Printf("ipqs cache: corrupt entry for %s, refetching", ip)
	} else if err != redis.Nil {
		log.Printf("ipqs cache: read failed: %v", err)
	}

	if c.OnMiss != nil {
		c.OnMiss()
	}

	result, err := c.inner.Lookup(ctx, ip, userAgent)
	if err != nil {
		return nil, err
	}

	// Only positive provider responses are worth caching; a success=false
	// payload usually means a key or quota problem.
	if result.Success {
		if raw, err := msgpack.Marshal(result); err == nil {
			if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				log.Printf("ipqs cache: write failed: %v", err)
			}
		}
	}
	return result, nil
}
