package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

// setupTestLimiter creates a limiter for testing. Skips when no Redis is
// reachable so the suite stays runnable without infrastructure.
func setupTestLimiter(t *testing.T, prefix string) (*Limiter, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	limiter := NewLimiter(client, prefix)

	cleanup := func() {
		client.Del(ctx, prefix+"test-key", prefix+"test-key:counter")
		client.Close()
	}

	return limiter, cleanup
}

func TestLimiterAllowUnderLimit(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:ratelimit:under:")
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestLimiterBlocksOverLimit(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:ratelimit:over:")
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
		require.NoError(t, err)
	}

	result, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestLimiterReset(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:ratelimit:reset:")
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.Reset(ctx, "test-key"))

	result, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimitMiddlewareNilLimiterPassesThrough(t *testing.T) {
	wrapped := RateLimitMiddleware(nil, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddlewareBlocksClient(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:ratelimit:mw:")
	defer cleanup()

	wrapped := RateLimitMiddleware(limiter, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "test-key")
		return req
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, newRequest())
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, newRequest())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
