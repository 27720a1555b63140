// Package ratelimit applies a per-client-IP token bucket in front of the
// API. Buckets refill continuously and idle ones are dropped by a background
// sweep.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

const (
	sweepInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  int
	refillRate time.Duration

	sweeper *time.Ticker
	done    chan struct{}
}

// Config sizes the limiter. A zero MaxRequestsPerMinute falls back to 120,
// matching the service default.
type Config struct {
	MaxRequestsPerMinute int
	Window               time.Duration
}

func New(cfg Config) *Limiter {
	if cfg.MaxRequestsPerMinute == 0 {
		cfg.MaxRequestsPerMinute = 120
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}

	l := &Limiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  cfg.MaxRequestsPerMinute,
		refillRate: cfg.Window / time.Duration(cfg.MaxRequestsPerMinute),
		sweeper:    time.NewTicker(sweepInterval),
		done:       make(chan struct{}),
	}

	go l.sweep()

	return l
}

// Middleware rejects clients that have drained their bucket with 429.
// Requests are keyed by client IP.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		if !l.allow(ip, time.Now()) {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

func (l *Limiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.maxTokens, lastRefill: now}
		l.buckets[key] = b
	}

	if refill := int(now.Sub(b.lastRefill) / l.refillRate); refill > 0 {
		b.tokens = min(l.maxTokens, b.tokens+refill)
		b.lastRefill = now
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) sweep() {
	for {
		select {
		case <-l.done:
			return
		case now := <-l.sweeper.C:
			l.mu.Lock()
			for key, b := range l.buckets {
				if now.Sub(b.lastRefill) > bucketIdleTTL {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop halts the background sweep.
func (l *Limiter) Stop() {
	l.sweeper.Stop()
	close(l.done)
}
