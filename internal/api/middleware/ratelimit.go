package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apierrors "github.com/feral-file/ff-fractions/internal/api/shared/errors"
	"github.com/feral-file/ff-fractions/internal/logger"
)

// RateLimitConfig bounds the request rate of each client IP.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration // Limiters unused for this long are dropped
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu        sync.Mutex
	config    RateLimitConfig
	clients   map[string]*clientLimiter
	lastPrune time.Time
}

func (l *clientLimiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > l.config.IdleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.config.IdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastPrune = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit rejects requests over the configured rate with 429
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}

	limiters := &clientLimiters{
		config:    cfg,
		clients:   make(map[string]*clientLimiter),
		lastPrune: time.Now(),
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			logger.WarnCtx(c.Request.Context(), "Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierrors.NewTooManyRequestsError("Too many requests"))
			return
		}
		c.Next()
	}
}
