package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func rateRouter(rl *RateLimiter, withIdentity bool) *gin.Engine {
	router := gin.New()
	if withIdentity {
		router.Use(Authenticate(true))
	}
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rateRouter(rl, false).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Close()
	router := rateRouter(rl, false)

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		last = httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, last.Code)
	}
	if code := decodeCode(t, last); code != "TOO_MANY_REQUESTS" {
		t.Errorf("expected code TOO_MANY_REQUESTS, got %q", code)
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	router := rateRouter(rl, false)

	for _, addr := range []string{"10.0.0.1:12345", "10.0.0.2:12345"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s first request: expected %d, got %d", addr, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimit_KeyedBySubject(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	router := rateRouter(rl, true)

	send := func(sub string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.9:12345"
		req.Header.Set(HeaderUserSub, sub)
		req.Header.Set(HeaderUserEmail, sub+"@integra.dev")
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("alice"); code != http.StatusOK {
		t.Fatalf("alice first request: expected %d, got %d", http.StatusOK, code)
	}
	if code := send("bob"); code != http.StatusOK {
		t.Errorf("bob shares the IP but has a separate bucket: expected %d, got %d", http.StatusOK, code)
	}
	if code := send("alice"); code != http.StatusTooManyRequests {
		t.Errorf("alice second request: expected %d, got %d", http.StatusTooManyRequests, code)
	}
}

func TestRateLimit_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	rl.limiterFor("ip:10.0.0.1")

	rl.evictIdle(time.Now().Add(10 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) != 0 {
		t.Errorf("expected idle limiters to be evicted, %d left", len(rl.limiters))
	}
}
