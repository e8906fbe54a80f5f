package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_WithinBudget(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Max: 3, Window: time.Minute})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		remaining, _, ok := rl.Allow("k", now)
		require.True(t, ok, "request %d should be allowed", i+1)
		assert.Equal(t, 3-i-1, remaining)
	}

	_, _, ok := rl.Allow("k", now)
	assert.False(t, ok, "fourth request should be rejected")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _, ok := rl.Allow("a", now)
	require.True(t, ok)
	_, _, ok = rl.Allow("a", now)
	require.False(t, ok)

	_, _, ok = rl.Allow("b", now)
	assert.True(t, ok, "a second key gets its own budget")
}

func TestAllow_SlidingWindowCarriesPreviousCount(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Max: 10, Window: time.Minute})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Fill the first window.
	for range 10 {
		_, _, ok := rl.Allow("k", start)
		require.True(t, ok)
	}

	// At the window boundary the previous count still weighs in fully, so
	// the budget stays exhausted.
	_, _, ok := rl.Allow("k", start.Add(time.Minute))
	assert.False(t, ok)

	// Deep into the next window most of the previous count has decayed.
	_, _, ok = rl.Allow("k", start.Add(time.Minute+55*time.Second))
	assert.True(t, ok)
}

func TestAllow_FullBudgetAfterIdleGap(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Max: 2, Window: time.Minute})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for range 2 {
		_, _, ok := rl.Allow("k", start)
		require.True(t, ok)
	}
	_, _, ok := rl.Allow("k", start)
	require.False(t, ok)

	// Two full windows later the previous count is dropped entirely.
	remaining, _, ok := rl.Allow("k", start.Add(3*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimit(ctx, RateLimitConfig{Max: 2, Window: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	rec = get()
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"message":"rate limit exceeded"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.5:4321",
			want:       "192.168.1.5",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain takes first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
