package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginRateLimiterPerIP(t *testing.T) {
	limiter := NewLoginRateLimiter(2, time.Minute)
	now := testNow

	ok, _ := limiter.allow("10.0.0.1", now)
	require.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1", now)
	require.True(t, ok)

	ok, retryAfter := limiter.allow("10.0.0.1", now)
	require.False(t, ok)
	require.GreaterOrEqual(t, retryAfter, 29*time.Second)
	require.LessOrEqual(t, retryAfter, 31*time.Second)

	ok, _ = limiter.allow("10.0.0.2", now)
	require.True(t, ok)

	ok, _ = limiter.allow("10.0.0.1", now.Add(31*time.Second))
	require.True(t, ok)
}

func TestLoginRateLimiterMiddleware(t *testing.T) {
	limiter := NewLoginRateLimiter(1, time.Hour)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	rec := send()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
