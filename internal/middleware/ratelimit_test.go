package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRateLimitRouter собирает тестовый роутер с rate limiting.
func newRateLimitRouter(client *redis.Client, limit int) *gin.Engine {
	router := gin.New()
	router.Use(NewRateLimitMiddleware(RateLimitConfig{
		Redis:  client,
		Limit:  limit,
		Window: time.Minute,
	}).Handle())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

// TestRateLimitMiddleware_UnderLimit проверяет пропуск запросов в пределах лимита.
func TestRateLimitMiddleware_UnderLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	router := newRateLimitRouter(client, 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "запрос %d должен пройти", i+1)
	}
}

// TestRateLimitMiddleware_OverLimit проверяет отказ при превышении лимита.
func TestRateLimitMiddleware_OverLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	router := newRateLimitRouter(client, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

// TestRateLimitMiddleware_FailOpen проверяет пропуск запросов при недоступном Redis.
func TestRateLimitMiddleware_FailOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	router := newRateLimitRouter(client, 1)

	// Redis падает
	mr.Close()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code, "при ошибке Redis запросы пропускаются")
}
