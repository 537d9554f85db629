package persistence

import (
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	gocacheStore "github.com/eko/gocache/store/go_cache/v4"
	redisStore "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
)

// NewCache returns a string cache backed by Redis when available, otherwise by an in-process
// go-cache. The in-process variant is per replica.
func NewCache(r *Redis) *cache.Cache[string] {
	if r.Enabled() {
		return cache.New[string](redisStore.NewRedis(r.Client))
	}
	return cache.New[string](gocacheStore.NewGoCache(gocache.New(10*time.Minute, 20*time.Minute)))
}
