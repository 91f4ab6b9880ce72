// Package payment проверяет платёжные подтверждения перед отметкой оплаты.
package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"example.com/storefront/internal/domain"
)

// statusCompleted — статус успешно завершённого платежа у провайдера.
// Сравнение регистронезависимое: провайдеры присылают и "COMPLETED", и "completed".
const statusCompleted = "COMPLETED"

// amountTolerance — допустимое расхождение суммы платежа с суммой заказа.
// Покрывает копеечные расхождения округления на стороне провайдера.
var amountTolerance = decimal.RequireFromString("0.01")

// Confirmation — платёжное подтверждение от провайдера (как пришло от клиента).
type Confirmation struct {
	ID         string          // Идентификатор платежа у провайдера
	Status     string          // Статус платежа
	UpdateTime string          // Время обновления платежа
	PayerEmail string          // Email плательщика
	Amount     decimal.Decimal // Сумма платежа
	Currency   string          // Валюта платежа
}

// Verifier проверяет подтверждения против ожидаемых параметров заказа.
type Verifier struct {
	currency string // Валюта витрины (например "USD")
}

// NewVerifier создаёт Verifier с валютой витрины.
func NewVerifier(currency string) *Verifier {
	return &Verifier{currency: currency}
}

// Verify проверяет платёжное подтверждение против суммы заказа.
// Порядок проверок фиксирован: полнота -> статус -> валюта -> сумма.
// Успех возвращает нормализованный PaymentResult для сохранения в заказе.
func (v *Verifier) Verify(conf Confirmation, expectedTotal decimal.Decimal) (domain.PaymentResult, error) {
	if strings.TrimSpace(conf.ID) == "" {
		return domain.PaymentResult{}, domain.ErrInvalidConfirmation
	}

	if !strings.EqualFold(conf.Status, statusCompleted) {
		return domain.PaymentResult{}, domain.ErrPaymentNotCompleted
	}

	if conf.Currency != "" && !strings.EqualFold(conf.Currency, v.currency) {
		return domain.PaymentResult{}, domain.ErrCurrencyMismatch
	}

	if conf.Amount.Sub(expectedTotal).Abs().GreaterThan(amountTolerance) {
		return domain.PaymentResult{}, domain.ErrAmountMismatch
	}

	return domain.PaymentResult{
		ID:         conf.ID,
		Status:     statusCompleted,
		UpdateTime: conf.UpdateTime,
		PayerEmail: conf.PayerEmail,
	}, nil
}
