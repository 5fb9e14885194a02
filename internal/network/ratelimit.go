package network

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// IPRateLimiter keeps one token bucket per remote address.
type IPRateLimiter struct {
	perSecond float64
	burst     int
	clients   map[string]*rate.Limiter
	mu        sync.Mutex
	logger    *logger.Logger
}

// NewIPRateLimiter creates a limiter allowing perSecond requests with burst.
func NewIPRateLimiter(perSecond float64, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		perSecond: perSecond,
		burst:     burst,
		clients:   make(map[string]*rate.Limiter),
		logger:    log,
	}
}

func (rl *IPRateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.clients[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rl.perSecond), rl.burst)
		rl.clients[ip] = l
	}
	return l
}

// Cleanup drops idle buckets every minute until ctx ends.
func (rl *IPRateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, l := range rl.clients {
				if l.TokensAt(now) >= float64(rl.burst) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware refuses requests over the limit with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.limiter(ip).Allow() {
			metrics.Get().RecordRateLimited()
			rl.logger.Warn("Rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeError(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
