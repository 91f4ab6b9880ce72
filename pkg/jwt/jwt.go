// Package jwt предоставляет работу с JWT токенами на основе RS256.
// Токены выдаёт внешний сервис аутентификации; витрина проверяет подпись
// публичным ключом. Приватный ключ подключается опционально — для локальной
// разработки и тестов.
package jwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims содержит данные JWT токена покупателя.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`           // ID пользователя
	Email   string `json:"email,omitempty"`   // Email пользователя
	IsAdmin bool   `json:"is_admin,omitempty"` // Признак администратора магазина
}

// Manager управляет валидацией (и опционально созданием) JWT токенов.
type Manager struct {
	privateKey     *rsa.PrivateKey // Приватный ключ (nil в режиме только-валидация)
	publicKey      *rsa.PublicKey  // Публичный ключ для верификации
	blacklist      *Blacklist      // Blacklist отозванных токенов (опционально)
	issuer         string          // Издатель токена
	accessTokenTTL time.Duration   // Время жизни выпускаемых токенов
}

// Config содержит параметры для создания Manager.
type Config struct {
	PrivateKeyPath string        // Путь к приватному ключу (опционально)
	PublicKeyPath  string        // Путь к публичному ключу (обязательно)
	Issuer         string        // Издатель токена
	AccessTokenTTL time.Duration // Время жизни access token
}

// NewManager создаёт менеджер JWT токенов.
// Без privateKeyPath менеджер работает только в режиме валидации.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		issuer:         cfg.Issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}

	publicKey, err := LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки публичного ключа: %w", err)
	}
	m.publicKey = publicKey

	if cfg.PrivateKeyPath != "" {
		privateKey, err := LoadPrivateKey(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки приватного ключа: %w", err)
		}
		m.privateKey = privateKey
	}

	return m, nil
}

// GenerateToken создаёт подписанный access token.
// Требует приватного ключа — в production им владеет сервис аутентификации,
// здесь генерация нужна для локальной разработки и тестов.
func (m *Manager) GenerateToken(userID, email string, isAdmin bool) (string, error) {
	if m.privateKey == nil {
		return "", fmt.Errorf("приватный ключ не загружен: генерация токенов недоступна")
	}

	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(), // jti — уникальный идентификатор токена
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenTTL)),
		},
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, nil
}

// ValidateToken проверяет подпись и срок действия токена, возвращает claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Принимаем только RSA — защита от подмены алгоритма.
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("неожиданный алгоритм подписи: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("ошибка валидации токена: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("невалидные claims токена")
	}

	return claims, nil
}

// CanSign возвращает true, если менеджер может подписывать токены.
func (m *Manager) CanSign() bool {
	return m.privateKey != nil
}

// SetBlacklist устанавливает blacklist отозванных токенов.
func (m *Manager) SetBlacklist(bl *Blacklist) {
	m.blacklist = bl
}

// Blacklist возвращает установленный blacklist (может быть nil).
func (m *Manager) Blacklist() *Blacklist {
	return m.blacklist
}

// LoadPublicKey загружает публичный RSA ключ из PEM файла.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("некорректный PEM в файле %s", path)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга публичного ключа: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ключ в файле %s не является RSA ключом", path)
	}

	return rsaPub, nil
}

// LoadPrivateKey загружает приватный RSA ключ из PEM файла.
// Поддерживает PKCS1 и PKCS8 форматы.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("некорректный PEM в файле %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга приватного ключа: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ключ в файле %s не является RSA ключом", path)
	}

	return key, nil
}
