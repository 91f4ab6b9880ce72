// Package pricing содержит чистый расчёт стоимости заказа.
// Никакого I/O и мутации входных данных: одинаковый набор позиций
// всегда даёт одинаковые суммы.
package pricing

import (
	"github.com/shopspring/decimal"

	"example.com/storefront/internal/domain"
)

// Точность денежных сумм: два знака после запятой,
// округление half away from zero (семантика decimal.Round).
const moneyScale = 2

// Config содержит параметры расчёта.
// Значения приходят из конфигурации, а не зашиваются в вызывающий код.
type Config struct {
	TaxRate               decimal.Decimal // Ставка налога (например 0.15)
	FreeShippingThreshold decimal.Decimal // Порог бесплатной доставки
	ShippingFee           decimal.Decimal // Фиксированная стоимость доставки ниже порога
}

// Totals — рассчитанные суммы заказа.
type Totals struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Engine выполняет расчёт сумм заказа.
type Engine struct {
	cfg Config
}

// NewEngine создаёт движок расчёта с заданной конфигурацией.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeTotals считает суммы заказа из набора позиций:
//
//	itemsPrice    = Σ (количество × цена за единицу), округлено до 2 знаков
//	shippingPrice = фиксированная ставка ниже порога бесплатной доставки, иначе 0
//	taxPrice      = ставка налога × itemsPrice, округлено до 2 знаков
//	totalPrice    = itemsPrice + shippingPrice + taxPrice
//
// Пустой набор даёт нулевой itemsPrice — отклонить пустую корзину обязан
// вызывающий код (создание заказа), а не движок.
func (e *Engine) ComputeTotals(items []domain.OrderItem) Totals {
	itemsPrice := decimal.Zero
	for i := range items {
		itemsPrice = itemsPrice.Add(items[i].Subtotal())
	}
	itemsPrice = itemsPrice.Round(moneyScale)

	shippingPrice := decimal.Zero
	if itemsPrice.LessThan(e.cfg.FreeShippingThreshold) {
		shippingPrice = e.cfg.ShippingFee.Round(moneyScale)
	}

	taxPrice := e.cfg.TaxRate.Mul(itemsPrice).Round(moneyScale)

	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice).Round(moneyScale)

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}
