package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"example.com/storefront/pkg/logger"
)

// newTracingRouter собирает тестовый роутер с tracing middleware.
func newTracingRouter(capture *string) *gin.Engine {
	router := gin.New()
	router.Use(NewTracingMiddleware().Handle())
	router.GET("/ping", func(c *gin.Context) {
		*capture = logger.TraceIDFromContext(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})
	return router
}

// TestTracingMiddleware_GeneratesIDs проверяет генерацию ID при их отсутствии.
func TestTracingMiddleware_GeneratesIDs(t *testing.T) {
	var ctxTraceID string
	router := newTracingRouter(&ctxTraceID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	traceID := w.Header().Get(HeaderTraceID)
	assert.NotEmpty(t, traceID, "trace_id должен генерироваться")
	assert.NotEmpty(t, w.Header().Get(HeaderCorrelationID))
	assert.Equal(t, traceID, ctxTraceID, "trace_id должен попадать в context запроса")
}

// TestTracingMiddleware_PropagatesIDs проверяет проброс входящих ID.
func TestTracingMiddleware_PropagatesIDs(t *testing.T) {
	var ctxTraceID string
	router := newTracingRouter(&ctxTraceID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderTraceID, "trace-abc")
	req.Header.Set(HeaderCorrelationID, "corr-xyz")
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get(HeaderTraceID))
	assert.Equal(t, "corr-xyz", w.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "trace-abc", ctxTraceID)
}

// TestTracingMiddleware_RequestIDAlias проверяет алиас X-Request-ID.
func TestTracingMiddleware_RequestIDAlias(t *testing.T) {
	var ctxTraceID string
	router := newTracingRouter(&ctxTraceID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(HeaderTraceID))
}
