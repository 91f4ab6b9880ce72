package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigHandler_GetPayPalConfig тестирует выдачу публичного client ID.
func TestConfigHandler_GetPayPalConfig(t *testing.T) {
	engine := gin.New()
	h := NewConfigHandler("sb-client-id-123")
	engine.GET("/api/config/paypal", h.GetPayPalConfig)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/config/paypal", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sb-client-id-123", resp["clientId"])
}

// TestRouter_PublicRoutes тестирует публичные маршруты собранного роутера.
func TestRouter_PublicRoutes(t *testing.T) {
	mockSvc := new(MockOrderService)
	router := NewRouter(RouterConfig{
		Orders:         mockSvc,
		PayPalClientID: "sb-client-id-123",
	})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"liveness probe", http.MethodGet, "/healthz", http.StatusOK},
		{"readiness probe без проверки", http.MethodGet, "/readyz", http.StatusOK},
		{"конфигурация PayPal", http.MethodGet, "/api/config/paypal", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestRouter_ReadinessFailure тестирует /readyz при недоступной зависимости.
func TestRouter_ReadinessFailure(t *testing.T) {
	mockSvc := new(MockOrderService)
	router := NewRouter(RouterConfig{
		Orders:         mockSvc,
		PayPalClientID: "sb-client-id-123",
		ReadinessCheck: func(ctx context.Context) error {
			return errors.New("база данных недоступна")
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
