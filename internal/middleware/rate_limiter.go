package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Auth endpoints get a
// stricter budget than the rest of the API.
type RateLimiter struct {
	mu           sync.Mutex
	visitors     map[string]*rate.Limiter
	lastSeen     map[string]time.Time
	defaultLimit rate.Limit
	defaultBurst int
	authLimit    rate.Limit
	authBurst    int
}

// NewRateLimiter builds the limiter with its per-endpoint budgets.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors:     make(map[string]*rate.Limiter),
		lastSeen:     make(map[string]time.Time),
		defaultLimit: rate.Every(100 * time.Millisecond), // 10 req/s
		defaultBurst: 20,
		authLimit:    rate.Every(2 * time.Second), // brute-force guard
		authBurst:    5,
	}
	go rl.evictIdle()
	return rl
}

// evictIdle drops limiters for IPs not seen for an hour so the maps
// don't grow without bound.
func (rl *RateLimiter) evictIdle() {
	for {
		time.Sleep(10 * time.Minute)
		cutoff := time.Now().Add(-1 * time.Hour)
		rl.mu.Lock()
		for ip, seen := range rl.lastSeen {
			if seen.Before(cutoff) {
				delete(rl.visitors, ip)
				delete(rl.lastSeen, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit is the Echo middleware entry point.
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limit, burst := rl.defaultLimit, rl.defaultBurst
			if isAuthPath(c.Request().URL.Path) {
				limit, burst = rl.authLimit, rl.authBurst
			}

			limiter := rl.getLimiter(c.RealIP()+c.Path(), limit, burst)
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests",
				})
			}
			return next(c)
		}
	}
}

func isAuthPath(path string) bool {
	switch path {
	case "/api/v1/auth/signin", "/api/v1/auth/signup", "/api/v1/auth/firebase-login":
		return true
	}
	return false
}

func (rl *RateLimiter) getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastSeen[key] = time.Now()
	limiter, ok := rl.visitors[key]
	if !ok {
		limiter = rate.NewLimiter(limit, burst)
		rl.visitors[key] = limiter
	}
	return limiter
}
