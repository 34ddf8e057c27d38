package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how fast one IP may open connections.
type RateLimitConfig struct {
	// MaxPerWindow connections admitted per IP per window.
	MaxPerWindow int
	// Window over which the budget refills.
	Window time.Duration
}

// DefaultRateLimitConfig allows five connections per minute per IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerWindow: 5,
		Window:       time.Minute,
	}
}

// ipLimiter keeps one token bucket per remote IP in an expiring cache, so
// idle addresses cost nothing after the window passes.
type ipLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters *cache.Cache
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	if cfg.MaxPerWindow <= 0 {
		cfg.MaxPerWindow = DefaultRateLimitConfig().MaxPerWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRateLimitConfig().Window
	}
	return &ipLimiter{
		cfg:      cfg,
		limiters: cache.New(cfg.Window, cfg.Window*2),
	}
}

// Allow reports whether the IP may open another connection right now.
func (l *ipLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := l.limiters.Get(ip); found {
		limiter = v.(*rate.Limiter)
	} else {
		interval := l.cfg.Window / time.Duration(l.cfg.MaxPerWindow)
		limiter = rate.NewLimiter(rate.Every(interval), l.cfg.MaxPerWindow)
	}
	l.limiters.Set(ip, limiter, cache.DefaultExpiration)

	return limiter.Allow()
}

// clientIP extracts the caller's address, honoring the first hop of an
// X-Forwarded-For header when a proxy sits in front.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
