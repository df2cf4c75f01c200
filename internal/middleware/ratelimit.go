package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/bilgisen/sevennews/internal/logger"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

// NewRateLimiter allows rps requests per second with the given burst per IP.
// Clients idle for five minutes are forgotten.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    5 * time.Minute,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow reports whether ip may proceed now.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	l.sweep(now)
	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// sweep must be called with mu held.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, ip)
		}
	}
}

// Handler rejects over-limit requests through onLimit, or with a plain 429
// when onLimit is nil.
func (l *RateLimiter) Handler(onLimit fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if l.Allow(ip) {
			return c.Next()
		}

		logger.Get().Warn().
			Str("ip", ip).
			Str("path", c.Path()).
			Msg("Rate limit exceeded")

		c.Status(fiber.StatusTooManyRequests)
		if onLimit != nil {
			return onLimit(c)
		}
		return c.SendString("Too many requests")
	}
}
