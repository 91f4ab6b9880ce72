// Package handler содержит HTTP обработчики REST API витрины.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/domain"
	"example.com/storefront/pkg/logger"
)

// ErrorResponse — стандартный формат ошибки API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleDomainError преобразует доменную ошибку в HTTP ответ.
// Единая точка маппинга для всех handlers.
func HandleDomainError(c *gin.Context, err error, method string) {
	log := logger.FromContext(c.Request.Context())

	// Guard: nil ошибка — баг в вызывающем коде.
	if err == nil {
		log.Error().Str("method", method).Msg("HandleDomainError вызван с nil ошибкой — баг в коде")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	var httpStatus int
	var errorCode string

	switch {
	// Ошибки валидации входных данных
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidProductRef),
		errors.Is(err, domain.ErrInvalidProductName),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidConfirmation):
		httpStatus = http.StatusBadRequest
		errorCode = "invalid_request"

	case errors.Is(err, domain.ErrForbidden):
		httpStatus = http.StatusForbidden
		errorCode = "forbidden"

	case errors.Is(err, domain.ErrOrderNotFound):
		httpStatus = http.StatusNotFound
		errorCode = "not_found"

	// Отклонённое платёжное подтверждение
	case errors.Is(err, domain.ErrPaymentNotCompleted),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrCurrencyMismatch):
		httpStatus = http.StatusPaymentRequired
		errorCode = "payment_rejected"

	// Конфликты состояния заказа
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrAlreadyDelivered),
		errors.Is(err, domain.ErrOrderNotPaid),
		errors.Is(err, domain.ErrPaymentInProgress),
		errors.Is(err, domain.ErrInvalidTransition):
		httpStatus = http.StatusConflict
		errorCode = "state_conflict"

	case errors.Is(err, domain.ErrStoreUnavailable):
		httpStatus = http.StatusServiceUnavailable
		errorCode = "service_unavailable"

	default:
		httpStatus = http.StatusInternalServerError
		errorCode = "internal_error"
		log.Error().
			Err(err).
			Str("method", method).
			Msg("Внутренняя ошибка")
	}

	message := err.Error()
	if httpStatus == http.StatusInternalServerError {
		// Детали внутренних ошибок наружу не отдаём
		message = "Внутренняя ошибка сервера"
	}

	c.JSON(httpStatus, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
