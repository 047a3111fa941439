package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRateLimiterPerUser(t *testing.T) {
	l := NewRateLimiter(0.001, 2, time.Minute)
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(target string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("/wallet/info?userId=u1"); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := do("/wallet/info?userId=u1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", code)
	}
	if code := do("/wallet/info?userId=u2"); code != http.StatusOK {
		t.Fatalf("other user status = %d", code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	l := NewRateLimiter(1, 1, time.Minute)
	l.get("user:a")
	l.get("user:b")
	if n := l.sweep(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("removed = %d, want 2", n)
	}
	if n := l.sweep(time.Now()); n != 0 {
		t.Fatalf("removed = %d, want 0", n)
	}
}

func TestCallerKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/payout/withdraw", nil)
	r.Header.Set(UserHeader, "u7")
	if got := callerKey(r); got != "user:u7" {
		t.Fatalf("callerKey = %s", got)
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := callerKey(r); got != "addr:10.0.0.1" {
		t.Fatalf("callerKey = %s", got)
	}
}
