package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AudioCache is an optional redis read-through cache for resolved audio
// bytes. Audio blobs live in Postgres and are fetched once per Play verb, so
// hot codes benefit from staying in memory.
//
// Invalidation bumps a generation counter instead of deleting keys: the
// fallback rule means a single write can change what every unresolved code
// maps to. Stale generations age out via TTL.
type AudioCache struct {
	rdb *redis.Client
	ttl time.Duration
}

const audioGenKey = "coded_audio:gen"

func NewAudioCache(rdb *redis.Client, ttl time.Duration) *AudioCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AudioCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached bytes for the code. Cache errors are treated as
// misses; the store of record is always available to fall back on.
func (c *AudioCache) Get(ctx context.Context, code string) ([]byte, bool) {
	key, err := c.key(ctx, code)
	if err != nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *AudioCache) Put(ctx context.Context, code string, audio []byte) {
	key, err := c.key(ctx, code)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, audio, c.ttl).Err()
}

// Invalidate makes all cached entries unreachable.
func (c *AudioCache) Invalidate(ctx context.Context) {
	_ = c.rdb.Incr(ctx, audioGenKey).Err()
}

func (c *AudioCache) key(ctx context.Context, code string) (string, error) {
	gen, err := c.rdb.Get(ctx, audioGenKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("coded_audio:%d:%s", gen, code), nil
}
