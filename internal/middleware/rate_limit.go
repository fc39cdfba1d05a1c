// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP. Buckets that stay idle
// past staleAfter are dropped by a background reaper so the map does not grow
// with every address that ever hit the API.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

const staleAfter = 5 * time.Minute

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
	}
	go l.reap()
	return l
}

func (l *ipLimiter) reap() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for ip, b := range l.buckets {
			if time.Since(b.lastSeen) > staleAfter {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.tokens.Allow()
}

func (l *ipLimiter) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": message})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers, strictest first: credential guessing, application spam, attachment
// uploads, then everything else.
var (
	authLimiter       = newIPLimiter(rate.Every(12*time.Second), 5)
	submissionLimiter = newIPLimiter(rate.Every(time.Minute), 3)
	uploadLimiter     = newIPLimiter(rate.Every(30*time.Second), 5)
	generalLimiter    = newIPLimiter(rate.Every(time.Second/20), 40)
)

func GeneralRateLimit() gin.HandlerFunc {
	return generalLimiter.handler("Rate limit exceeded. Please slow down.")
}

func AuthRateLimit() gin.HandlerFunc {
	return authLimiter.handler("Too many authentication attempts. Please try again later.")
}

// SubmissionRateLimit throttles new project applications. A burst above the
// limit is a spam pattern, not a legitimate bidding session.
func SubmissionRateLimit() gin.HandlerFunc {
	return submissionLimiter.handler("You are applying too quickly. Please wait before submitting another application.")
}

func UploadRateLimit() gin.HandlerFunc {
	return uploadLimiter.handler("Too many uploads. Please wait before attaching more files.")
}
