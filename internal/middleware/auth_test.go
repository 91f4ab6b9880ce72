// Package middleware содержит unit тесты для HTTP middleware.
package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestJWTManager создаёт Manager с генерируемой парой RSA ключей.
func newTestJWTManager(t *testing.T) *jwt.Manager {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	manager, err := jwt.NewManager(jwt.Config{
		PrivateKeyPath: privPath,
		PublicKeyPath:  pubPath,
		Issuer:         "storefront-test",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	return manager
}

// newAuthRouter собирает тестовый роутер с auth middleware.
func newAuthRouter(manager *jwt.Manager) *gin.Engine {
	router := gin.New()
	router.Use(NewAuthMiddleware(manager).Handle())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(CtxUserID),
			"is_admin": c.GetBool(CtxIsAdmin),
		})
	})
	return router
}

// TestAuthMiddleware_NoToken проверяет отказ без токена.
func TestAuthMiddleware_NoToken(t *testing.T) {
	router := newAuthRouter(newTestJWTManager(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAuthMiddleware_InvalidToken проверяет отказ с мусорным токеном.
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newAuthRouter(newTestJWTManager(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAuthMiddleware_ValidToken проверяет пропуск валидного токена.
func TestAuthMiddleware_ValidToken(t *testing.T) {
	manager := newTestJWTManager(t)
	router := newAuthRouter(manager)

	token, err := manager.GenerateToken("user-123", "user@example.com", true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
	assert.Contains(t, w.Body.String(), `"is_admin":true`)
}

// TestAuthMiddleware_RevokedToken проверяет отказ по blacklist.
func TestAuthMiddleware_RevokedToken(t *testing.T) {
	manager := newTestJWTManager(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager.SetBlacklist(jwt.NewBlacklist(client))
	router := newAuthRouter(manager)

	token, err := manager.GenerateToken("user-123", "user@example.com", false)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)

	// Отзываем токен по jti
	require.NoError(t, manager.Blacklist().Add(t.Context(), claims.ID, claims.ExpiresAt.Time))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestExtractBearerToken проверяет разбор заголовка Authorization.
func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"корректный Bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer в нижнем регистре", "bearer abc.def.ghi", "abc.def.ghi"},
		{"пустой заголовок", "", ""},
		{"без схемы", "abc.def.ghi", ""},
		{"другая схема", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.expected, extractBearerToken(c))
		})
	}
}
