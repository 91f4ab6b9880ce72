// Package jwt — тесты для JWT Manager.
// RSA ключи генерируются в тестах, blacklist проверяется через miniredis.
package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyPair содержит тестовые RSA ключи.
type testKeyPair struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// generateTestKeyPair генерирует пару RSA ключей для тестов.
func generateTestKeyPair(t *testing.T) *testKeyPair {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "не удалось сгенерировать RSA ключ")

	return &testKeyPair{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
	}
}

// createTestManager создаёт Manager напрямую с ключами (без загрузки из файлов).
func createTestManager(t *testing.T, keys *testKeyPair) *Manager {
	t.Helper()

	return &Manager{
		privateKey:     keys.privateKey,
		publicKey:      keys.publicKey,
		issuer:         "test-issuer",
		accessTokenTTL: 15 * time.Minute,
	}
}

// writeKeyToTempFile записывает ключ во временный файл.
func writeKeyToTempFile(t *testing.T, keyData []byte, prefix string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), prefix+".pem")

	err := os.WriteFile(path, keyData, 0600)
	require.NoError(t, err, "не удалось записать ключ в файл")

	return path
}

// encodePrivateKeyPKCS1 кодирует приватный ключ в формате PKCS#1.
func encodePrivateKeyPKCS1(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// encodePublicKeyPKIX кодирует публичный ключ в формате PKIX.
func encodePublicKeyPKIX(t *testing.T, key *rsa.PublicKey) []byte {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})
}

// =====================================
// Тесты GenerateToken / ValidateToken
// =====================================

// TestManager_GenerateAndValidate проверяет полный цикл токена.
func TestManager_GenerateAndValidate(t *testing.T) {
	keys := generateTestKeyPair(t)
	m := createTestManager(t, keys)

	token, err := m.GenerateToken("user-123", "user@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "jti должен быть заполнен")
}

// TestManager_GenerateToken_Admin проверяет признак администратора в claims.
func TestManager_GenerateToken_Admin(t *testing.T) {
	keys := generateTestKeyPair(t)
	m := createTestManager(t, keys)

	token, err := m.GenerateToken("admin-1", "admin@example.com", true)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

// TestManager_ValidateToken_WrongKey проверяет отказ при чужой подписи.
func TestManager_ValidateToken_WrongKey(t *testing.T) {
	signer := createTestManager(t, generateTestKeyPair(t))
	verifier := createTestManager(t, generateTestKeyPair(t)) // Другая пара ключей

	token, err := signer.GenerateToken("user-123", "user@example.com", false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err, "токен с чужой подписью должен отклоняться")
}

// TestManager_ValidateToken_WrongAlgorithm проверяет защиту от подмены алгоритма.
func TestManager_ValidateToken_WrongAlgorithm(t *testing.T) {
	keys := generateTestKeyPair(t)
	m := createTestManager(t, keys)

	// Токен подписан HMAC с публичным ключом в качестве секрета —
	// классическая атака подмены RS256 -> HS256
	claims := Claims{UserID: "attacker"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(encodePublicKeyPKIX(t, keys.publicKey))
	require.NoError(t, err)

	_, err = m.ValidateToken(signed)
	assert.Error(t, err, "HS256 токен должен отклоняться")
}

// TestManager_ValidateToken_Expired проверяет отказ по сроку действия.
func TestManager_ValidateToken_Expired(t *testing.T) {
	keys := generateTestKeyPair(t)
	m := createTestManager(t, keys)
	m.accessTokenTTL = -time.Minute // Токен истекает в прошлом

	token, err := m.GenerateToken("user-123", "user@example.com", false)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err, "истёкший токен должен отклоняться")
}

// TestManager_ValidateToken_Garbage проверяет отказ на мусорной строке.
func TestManager_ValidateToken_Garbage(t *testing.T) {
	m := createTestManager(t, generateTestKeyPair(t))

	_, err := m.ValidateToken("не-токен-вообще")
	assert.Error(t, err)
}

// TestManager_GenerateToken_NoPrivateKey проверяет режим только-валидация.
func TestManager_GenerateToken_NoPrivateKey(t *testing.T) {
	keys := generateTestKeyPair(t)
	m := &Manager{
		publicKey: keys.publicKey,
		issuer:    "test-issuer",
	}

	assert.False(t, m.CanSign())

	_, err := m.GenerateToken("user-123", "user@example.com", false)
	assert.Error(t, err, "без приватного ключа генерация недоступна")
}

// =====================================
// Тесты NewManager (загрузка ключей из файлов)
// =====================================

// TestNewManager проверяет создание менеджера из PEM файлов.
func TestNewManager(t *testing.T) {
	keys := generateTestKeyPair(t)

	pubPath := writeKeyToTempFile(t, encodePublicKeyPKIX(t, keys.publicKey), "public")
	privPath := writeKeyToTempFile(t, encodePrivateKeyPKCS1(keys.privateKey), "private")

	t.Run("с приватным ключом", func(t *testing.T) {
		m, err := NewManager(Config{
			PrivateKeyPath: privPath,
			PublicKeyPath:  pubPath,
			Issuer:         "storefront",
			AccessTokenTTL: time.Hour,
		})
		require.NoError(t, err)
		assert.True(t, m.CanSign())

		token, err := m.GenerateToken("user-1", "u@example.com", false)
		require.NoError(t, err)

		claims, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "storefront", claims.Issuer)
	})

	t.Run("только публичный ключ", func(t *testing.T) {
		m, err := NewManager(Config{
			PublicKeyPath: pubPath,
			Issuer:        "storefront",
		})
		require.NoError(t, err)
		assert.False(t, m.CanSign())
	})

	t.Run("публичный ключ отсутствует", func(t *testing.T) {
		_, err := NewManager(Config{
			PublicKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		})
		assert.Error(t, err)
	})
}
