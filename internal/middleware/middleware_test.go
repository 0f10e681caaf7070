package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planetwars-server/internal/auth"
	"planetwars-server/internal/shared/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, "ops", role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func TestRequireOperator(t *testing.T) {
	handler := RequireOperator(testSecret, noContent)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"viewer", "Bearer " + token(t, auth.RoleViewer), http.StatusForbidden},
		{"operator", "Bearer " + token(t, auth.RoleOperator), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/match/abort", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2})
	handler := rl.Middleware(noContent)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/match/status", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:1000"); code != http.StatusNoContent {
			t.Fatalf("request %d = %d", i, code)
		}
	}
	if code := call("10.0.0.1:1001"); code != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", code)
	}
	if code := call("10.0.0.2:1000"); code != http.StatusNoContent {
		t.Errorf("other client = %d, want 204", code)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, BurstSize: 1})
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(clientIdleTTL / 2)
	rl.allow("10.0.0.2")
	now = now.Add(clientIdleTTL/2 + time.Second)

	if evicted := rl.evictIdle(); evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("recent client evicted")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := clientIP(req, false); got != "192.168.1.1" {
		t.Errorf("untrusted = %q", got)
	}
	if got := clientIP(req, true); got != "203.0.113.9" {
		t.Errorf("trusted = %q", got)
	}
}
