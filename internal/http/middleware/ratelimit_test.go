package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFixedLimiter(windowLen time.Duration, max int) (*RateLimiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(windowLen, max, KeyByClientIP())
	rl.SetClock(clk.now)
	return rl, clk
}

func TestAllow_TwentyFirstRequestRejected(t *testing.T) {
	rl, _ := newFixedLimiter(60*time.Second, 20)

	for i := 0; i < 20; i++ {
		if !rl.Allow("ip:1.2.3.4") {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
	}
	if rl.Allow("ip:1.2.3.4") {
		t.Fatal("21st request admitted, want rejected")
	}
	// Rejection must not consume: still rejected, not double-counted.
	if rl.Allow("ip:1.2.3.4") {
		t.Fatal("22nd request admitted, want rejected")
	}
}

func TestAllow_NewWindowResetsRegardlessOfPriorCount(t *testing.T) {
	rl, clk := newFixedLimiter(60*time.Second, 20)

	for i := 0; i < 25; i++ {
		rl.Allow("ip:1.2.3.4")
	}
	if rl.Allow("ip:1.2.3.4") {
		t.Fatal("still inside window, want rejected")
	}

	clk.advance(61 * time.Second)
	if !rl.Allow("ip:1.2.3.4") {
		t.Fatal("first request of new window rejected")
	}
	// Counter restarted at 1: nineteen more fit in the fresh window.
	for i := 0; i < 19; i++ {
		if !rl.Allow("ip:1.2.3.4") {
			t.Fatalf("request %d of new window rejected", i+2)
		}
	}
	if rl.Allow("ip:1.2.3.4") {
		t.Fatal("new window over cap, want rejected")
	}
}

func TestAllow_BoundaryExactlyAtReset(t *testing.T) {
	rl, clk := newFixedLimiter(60*time.Second, 1)

	if !rl.Allow("k") {
		t.Fatal("first request rejected")
	}
	// Exactly at the deadline the old window still applies (now.After is false).
	clk.advance(60 * time.Second)
	if rl.Allow("k") {
		t.Fatal("request exactly at deadline admitted, want rejected")
	}
	clk.advance(time.Nanosecond)
	if !rl.Allow("k") {
		t.Fatal("request past deadline rejected")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl, _ := newFixedLimiter(60*time.Second, 1)

	if !rl.Allow("ip:a") || !rl.Allow("ip:b") {
		t.Fatal("distinct keys should not share windows")
	}
	if rl.Allow("ip:a") {
		t.Fatal("key a over cap, want rejected")
	}
}

func TestHandler_Returns429Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newFixedLimiter(60*time.Second, 1)

	r := gin.New()
	r.Use(RequestID())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	body := w.Body.String()
	for _, want := range []string{`"code":"too_many_requests"`, "Too many requests"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %q missing %q", body, want)
		}
	}
}
