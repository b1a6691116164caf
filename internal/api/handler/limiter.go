package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles requests per client IP. Clients idle for longer than the TTL are
// swept on a later request, so the map is bounded by recently active clients.
type Limiter struct {
	clients      map[string]*clientLimiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	idleTTL      time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

// NewLimiter creates a per-client limiter. A non-positive burst defaults to 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		clients:      make(map[string]*clientLimiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		idleTTL:      limiterIdleTTL,
		now:          time.Now,
	}
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(client string) bool {
	return l.getLimiter(client).Allow()
}

func (l *Limiter) getLimiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, exists := l.clients[client]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.defaultRate, l.defaultBurst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// sweep drops clients not seen within the TTL. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	for client, entry := range l.clients {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
