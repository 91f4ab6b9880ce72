package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain"
)

func validConfirmation() Confirmation {
	return Confirmation{
		ID:         "PAYID-123456",
		Status:     "COMPLETED",
		UpdateTime: "2026-08-28T10:00:00Z",
		PayerEmail: "buyer@example.com",
		Amount:     decimal.RequireFromString("67.50"),
		Currency:   "USD",
	}
}

func TestVerifier_Verify(t *testing.T) {
	expected := decimal.RequireFromString("67.50")

	tests := []struct {
		name    string
		mutate  func(*Confirmation)
		wantErr error
	}{
		{
			name:    "успешная проверка",
			mutate:  func(c *Confirmation) {},
			wantErr: nil,
		},
		{
			name:    "статус в нижнем регистре принимается",
			mutate:  func(c *Confirmation) { c.Status = "completed" },
			wantErr: nil,
		},
		{
			name:    "валюта в нижнем регистре принимается",
			mutate:  func(c *Confirmation) { c.Currency = "usd" },
			wantErr: nil,
		},
		{
			name:    "сумма в пределах допуска",
			mutate:  func(c *Confirmation) { c.Amount = decimal.RequireFromString("67.51") },
			wantErr: nil,
		},
		{
			name:    "пустой идентификатор платежа",
			mutate:  func(c *Confirmation) { c.ID = "  " },
			wantErr: domain.ErrInvalidConfirmation,
		},
		{
			name:    "платёж не завершён",
			mutate:  func(c *Confirmation) { c.Status = "PENDING" },
			wantErr: domain.ErrPaymentNotCompleted,
		},
		{
			name:    "пустой статус",
			mutate:  func(c *Confirmation) { c.Status = "" },
			wantErr: domain.ErrPaymentNotCompleted,
		},
		{
			name:    "чужая валюта",
			mutate:  func(c *Confirmation) { c.Currency = "EUR" },
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name:    "сумма меньше итога заказа",
			mutate:  func(c *Confirmation) { c.Amount = decimal.RequireFromString("60.00") },
			wantErr: domain.ErrAmountMismatch,
		},
		{
			name:    "сумма больше итога заказа",
			mutate:  func(c *Confirmation) { c.Amount = decimal.RequireFromString("67.52") },
			wantErr: domain.ErrAmountMismatch,
		},
	}

	verifier := NewVerifier("USD")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := validConfirmation()
			tt.mutate(&conf)

			result, err := verifier.Verify(conf, expected)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, conf.ID, result.ID)
			assert.Equal(t, "COMPLETED", result.Status, "статус нормализуется к верхнему регистру")
			assert.Equal(t, conf.UpdateTime, result.UpdateTime)
			assert.Equal(t, conf.PayerEmail, result.PayerEmail)
		})
	}
}

func TestVerifier_Verify_EmptyCurrencySkipsCheck(t *testing.T) {
	// Провайдер может не прислать валюту: проверка валюты пропускается,
	// сумма всё равно проверяется.
	verifier := NewVerifier("USD")

	conf := validConfirmation()
	conf.Currency = ""

	_, err := verifier.Verify(conf, decimal.RequireFromString("67.50"))
	require.NoError(t, err)
}
