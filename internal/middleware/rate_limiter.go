package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"printscrap/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Window counter ────────────────────────────────────────────────────────────

// windowEntry tracks hits per IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// windowCounter is the in-process store. With several API replicas behind a
// load balancer the Redis store is used instead so limits are shared.
type windowCounter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

var (
	counters   = make(map[string]*windowCounter)
	countersMu sync.Mutex
	purgeOnce  sync.Once
)

func counterFor(name string) *windowCounter {
	countersMu.Lock()
	defer countersMu.Unlock()
	wc, ok := counters[name]
	if !ok {
		wc = &windowCounter{entries: make(map[string]*windowEntry)}
		counters[name] = wc
	}
	return wc
}

// hit registers one request and returns the running count plus the window end.
func (wc *windowCounter) hit(ip string, window time.Duration, now time.Time) (int, time.Time) {
	wc.mu.Lock()
	entry, exists := wc.entries[ip]
	if !exists {
		entry = &windowEntry{}
		wc.entries[ip] = entry
	}
	wc.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(window)
	}
	entry.count++
	return entry.count, entry.windowEnd
}

// redisHit counts in a shared key that expires with the window.
func redisHit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Time, error) {
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if n == 1 {
		if err := rdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return 1, time.Now().Add(window), nil
	}
	ttl, err := rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if ttl < 0 {
		// Key lost its expiry; re-arm it.
		_ = rdb.PExpire(ctx, key, window).Err()
		ttl = window
	}
	return int(n), time.Now().Add(ttl), nil
}

// ── Limiters ──────────────────────────────────────────────────────────────────

// RateLimiter caps requests per client IP per window. name keeps separate
// limiters from sharing counters. rdb may be nil; Redis errors fall back to
// the in-process counter so a cache outage never blocks traffic.
func RateLimiter(rdb *redis.Client, name string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	wc := counterFor(name)
	purgeOnce.Do(func() { go purgeExpiredEntries() })

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var (
			count int
			end   time.Time
			err   error
		)
		if rdb != nil {
			count, end, err = redisHit(c.Request.Context(), rdb, "ratelimit:"+name+":"+ip, window)
			if err != nil {
				log.Warn().Err(err).Str("limiter", name).Msg("redis rate limiter unavailable, using local counter")
			}
		}
		if rdb == nil || err != nil {
			count, end = wc.hit(ip, window, time.Now())
		}

		if count > limit {
			secs := int(time.Until(end).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// APIRateLimiter is the general limiter applied to every /v1 route.
func APIRateLimiter(rdb *redis.Client, perMinute int) gin.HandlerFunc {
	return RateLimiter(rdb, "api", perMinute, time.Minute, "Too many requests, please retry shortly")
}

// LoginRateLimiter limits login and registration attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute, "Too many login attempts, retry in a minute")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries from every in-process counter so IPs
// that never return do not accumulate.

const purgeInterval = 5 * time.Minute

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		purged := purgeCounters(time.Now())
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}

func purgeCounters(now time.Time) int {
	countersMu.Lock()
	defer countersMu.Unlock()

	purged := 0
	for _, wc := range counters {
		wc.mu.Lock()
		for ip, entry := range wc.entries {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(wc.entries, ip)
				purged++
			}
			entry.mu.Unlock()
		}
		wc.mu.Unlock()
	}
	return purged
}
