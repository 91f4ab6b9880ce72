package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigHandler отдаёт публичную конфигурацию для браузерного клиента.
type ConfigHandler struct {
	paypalClientID string
}

// NewConfigHandler создаёт обработчик публичной конфигурации.
func NewConfigHandler(paypalClientID string) *ConfigHandler {
	return &ConfigHandler{paypalClientID: paypalClientID}
}

// GetPayPalConfig возвращает client ID для инициализации PayPal SDK.
// GET /api/config/paypal
func (h *ConfigHandler) GetPayPalConfig(c *gin.Context) {
	c.JSON(http.StatusOK, PayPalConfigResponse{ClientID: h.paypalClientID})
}
