package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 10 * time.Minute
	cleanupMaxAge   = 30 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
}

// newIPLimiter returns nil when perMinute is zero, which disables limiting.
func newIPLimiter(perMinute, burst int) *ipLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(perMinute) / 60.0,
		burst:   burst,
	}
}

func (l *ipLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastUsed = time.Now()
	l.mu.Unlock()
	return entry.limiter.Allow()
}

func (l *ipLimiter) cleanup(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for ip, entry := range l.entries {
		if entry.lastUsed.Before(before) {
			delete(l.entries, ip)
			removed++
		}
	}
	return removed
}

func (l *ipLimiter) run(ctx context.Context) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(time.Now().Add(-cleanupMaxAge))
		}
	}
}

// clientIP keys the limiter. X-Forwarded-For is client controlled, so it is
// only read when the server sits behind a proxy that sets it.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if fwd = strings.TrimSpace(fwd); fwd != "" {
			return fwd
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
