package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/utils/cache"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
)

// attemptWindow is how long failed attempts are remembered
const attemptWindow = 15 * time.Minute

// lockoutStep maps a failure count to a lock duration
type lockoutStep struct {
	attempts int64
	duration time.Duration
}

// Checked from the largest threshold down
var lockoutSteps = []lockoutStep{
	{attempts: 25, duration: 24 * time.Hour},
	{attempts: 10, duration: time.Hour},
	{attempts: 5, duration: 2 * time.Minute},
}

// lockoutFor returns how long to lock after the given number of failures
func lockoutFor(attempts int64) time.Duration {
	for _, s := range lockoutSteps {
		if attempts >= s.attempts {
			return s.duration
		}
	}
	return 0
}

// BruteForceProtection handles brute force protection using Redis
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{redisCache: redisCache}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckLock middleware rejects requests from a locked out IP
func (b *BruteForceProtection) CheckLock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil || b.redisCache == nil {
			return c.Next()
		}
		key := lockKey(c.IP())

		locked, err := b.redisCache.Exists(c.UserContext(), key)
		if err != nil {
			// Redis being down must not lock everyone out
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.redisCache.TTL(c.UserContext(), key)
		retryAfter := int(ttl.Seconds())
		if retryAfter < 0 {
			retryAfter = 60
		}
		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// RecordFailure counts a failed login and applies progressive lockouts
func (b *BruteForceProtection) RecordFailure(ctx context.Context, ip string) {
	if b == nil || b.redisCache == nil {
		return
	}
	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return
	}
	if attempts == 1 {
		_ = b.redisCache.Expire(ctx, attemptKey(ip), attemptWindow)
	}

	if d := lockoutFor(attempts); d > 0 {
		if err := b.redisCache.Set(ctx, lockKey(ip), "locked", d); err != nil {
			log.Printf("[AUTH] failed to lock %s: %v", ip, err)
		}
	}
}

// RecordSuccess clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccess(ctx context.Context, ip string) {
	if b == nil || b.redisCache == nil {
		return
	}
	_ = b.redisCache.Delete(ctx, attemptKey(ip), lockKey(ip))
}
