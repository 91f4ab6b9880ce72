// Package middleware содержит HTTP middleware витрины.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"example.com/storefront/pkg/jwt"
	"example.com/storefront/pkg/logger"
)

// Ключи Gin context с данными аутентифицированного пользователя.
const (
	CtxUserID  = "user_id"
	CtxEmail   = "email"
	CtxIsAdmin = "is_admin"
	CtxJTI     = "jti"
)

// AuthMiddleware — middleware для проверки JWT токенов.
// Подпись проверяется локально по публичному ключу,
// отзыв — по blacklist в Redis.
type AuthMiddleware struct {
	manager *jwt.Manager
}

// NewAuthMiddleware создаёт новый middleware для аутентификации.
func NewAuthMiddleware(manager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{manager: manager}
}

// Handle возвращает Gin handler function для middleware.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		token := extractBearerToken(c)
		if token == "" {
			log.Debug().Msg("Отсутствует токен авторизации")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Требуется авторизация",
			})
			return
		}

		claims, err := m.manager.ValidateToken(token)
		if err != nil {
			log.Warn().Err(err).Msg("Ошибка валидации токена")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Невалидный токен",
			})
			return
		}

		if revoked := m.isRevoked(c, claims); revoked {
			log.Debug().Str("user_id", claims.UserID).Msg("Токен отозван")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Токен недействителен",
			})
			return
		}

		// Сохраняем данные пользователя в контекст Gin
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxIsAdmin, claims.IsAdmin)
		c.Set(CtxJTI, claims.ID)

		log.Debug().
			Str("user_id", claims.UserID).
			Bool("is_admin", claims.IsAdmin).
			Msg("Пользователь аутентифицирован")

		c.Next()
	}
}

// isRevoked проверяет токен по blacklist.
// Ошибки Redis не блокируют запрос (fail-open): подпись и срок
// действия токена уже проверены.
func (m *AuthMiddleware) isRevoked(c *gin.Context, claims *jwt.Claims) bool {
	bl := m.manager.Blacklist()
	if bl == nil {
		return false
	}

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	revoked, err := bl.Check(ctx, claims.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Ошибка проверки blacklist токенов")
	} else if revoked {
		return true
	}

	if claims.IssuedAt == nil {
		return false
	}

	invalidated, err := bl.IsUserInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		log.Warn().Err(err).Msg("Ошибка проверки инвалидации пользователя")
		return false
	}

	return invalidated
}

// extractBearerToken извлекает токен из заголовка Authorization.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
