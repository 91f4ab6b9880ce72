// Package middleware — Security Headers middleware.
package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders добавляет заголовки безопасности ко всем ответам API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()

		// Запрет встраивания в iframe — защита от clickjacking
		h.Set("X-Frame-Options", "DENY")

		// Запрет MIME-type sniffing
		h.Set("X-Content-Type-Options", "nosniff")

		// Скрываем информацию о сервере
		h.Set("X-Powered-By", "")

		// Ответы API содержат данные заказов — не кешировать
		h.Set("Cache-Control", "no-store")

		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}
