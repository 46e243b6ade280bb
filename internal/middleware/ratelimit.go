package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
	"golang.org/x/time/rate"
)

var errTooManyRequests = &response.AppError{
	HTTPStatus: http.StatusTooManyRequests,
	Code:       response.CodeTooManyRequests,
	Message:    "too many requests, please try again later",
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles each caller with its own token bucket. Callers are
// keyed by identity subject when authenticated, by client IP otherwise.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  5 * time.Minute,
		stop:     make(chan struct{}),
	}
	go rl.sweep(3 * time.Minute)
	return rl
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.limiters[key]
	if !exists {
		v = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.limiters {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Close stops the idle sweeper.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(rateKey(c)).Allow() {
			response.Abort(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	if identity, ok := GetIdentity(c); ok {
		return "sub:" + identity.Subject
	}
	return "ip:" + c.ClientIP()
}
