package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sahilchouksey/edu-platform-api/utils/cache"
)

// cached returns the value under key, loading and storing it on a miss.
// Cache failures degrade to a plain load.
func cached[T any](ctx context.Context, store cache.Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if store == nil {
		return load()
	}

	var hit T
	err := store.GetJSON(ctx, key, &hit)
	if err == nil {
		return hit, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		log.Printf("[CACHE] get %s: %v", key, err)
	}

	fresh, err := load()
	if err != nil {
		return fresh, err
	}
	if err := store.SetJSON(ctx, key, fresh, ttl); err != nil {
		log.Printf("[CACHE] set %s: %v", key, err)
	}
	return fresh, nil
}

// invalidate deletes keys and every key matching patterns
func invalidate(ctx context.Context, store cache.Store, keys []string, patterns ...string) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, keys...); err != nil {
		log.Printf("[CACHE] delete %v: %v", keys, err)
	}
	for _, p := range patterns {
		if _, err := store.DeletePattern(ctx, p); err != nil {
			log.Printf("[CACHE] delete pattern %s: %v", p, err)
		}
	}
}
