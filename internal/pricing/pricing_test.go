package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain"
)

func defaultConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		TaxRate:               decimal.RequireFromString("0.15"),
		FreeShippingThreshold: decimal.RequireFromString("100"),
		ShippingFee:           decimal.RequireFromString("10"),
	}
}

func item(qty int32, price string) domain.OrderItem {
	return domain.OrderItem{
		ProductID: "prod-1",
		Name:      "Товар",
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestEngine_ComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []domain.OrderItem
		wantItems    string
		wantShipping string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "ниже порога бесплатной доставки",
			items:        []domain.OrderItem{item(2, "25.00")},
			wantItems:    "50.00",
			wantShipping: "10.00",
			wantTax:      "7.50",
			wantTotal:    "67.50",
		},
		{
			name:         "ровно на пороге - доставка бесплатна",
			items:        []domain.OrderItem{item(4, "25.00")},
			wantItems:    "100.00",
			wantShipping: "0.00",
			wantTax:      "15.00",
			wantTotal:    "115.00",
		},
		{
			name:         "выше порога",
			items:        []domain.OrderItem{item(3, "50.00")},
			wantItems:    "150.00",
			wantShipping: "0.00",
			wantTax:      "22.50",
			wantTotal:    "172.50",
		},
		{
			name:         "несколько позиций",
			items:        []domain.OrderItem{item(1, "19.99"), item(2, "5.49")},
			wantItems:    "30.97",
			wantShipping: "10.00",
			wantTax:      "4.65", // 0.15 * 30.97 = 4.6455 -> 4.65
			wantTotal:    "45.62",
		},
		{
			name:         "округление половины от нуля",
			items:        []domain.OrderItem{item(1, "0.10")},
			wantItems:    "0.10",
			wantShipping: "10.00",
			wantTax:      "0.02", // 0.015 -> 0.02, а не 0.01
			wantTotal:    "10.12",
		},
		{
			name:         "пустой набор позиций",
			items:        nil,
			wantItems:    "0.00",
			wantShipping: "10.00",
			wantTax:      "0.00",
			wantTotal:    "10.00",
		},
	}

	engine := NewEngine(defaultConfig(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ComputeTotals(tt.items)

			assert.Equal(t, tt.wantItems, got.ItemsPrice.StringFixed(2), "itemsPrice")
			assert.Equal(t, tt.wantShipping, got.ShippingPrice.StringFixed(2), "shippingPrice")
			assert.Equal(t, tt.wantTax, got.TaxPrice.StringFixed(2), "taxPrice")
			assert.Equal(t, tt.wantTotal, got.TotalPrice.StringFixed(2), "totalPrice")
		})
	}
}

func TestEngine_ComputeTotals_Invariant(t *testing.T) {
	engine := NewEngine(defaultConfig(t))

	items := []domain.OrderItem{
		item(3, "33.33"),
		item(1, "0.07"),
		item(7, "12.95"),
	}

	got := engine.ComputeTotals(items)

	sum := got.ItemsPrice.Add(got.ShippingPrice).Add(got.TaxPrice)
	assert.True(t, got.TotalPrice.Equal(sum),
		"totalPrice (%s) должен равняться items+shipping+tax (%s)", got.TotalPrice, sum)
}

func TestEngine_ComputeTotals_Deterministic(t *testing.T) {
	engine := NewEngine(defaultConfig(t))

	items := []domain.OrderItem{item(2, "49.99"), item(5, "3.33")}

	first := engine.ComputeTotals(items)
	for i := 0; i < 10; i++ {
		got := engine.ComputeTotals(items)
		require.True(t, got.TotalPrice.Equal(first.TotalPrice),
			"повторный расчёт должен давать те же суммы")
	}
}

func TestEngine_ComputeTotals_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine(defaultConfig(t))

	items := []domain.OrderItem{item(2, "25.00")}
	before := items[0]

	_ = engine.ComputeTotals(items)

	assert.Equal(t, before, items[0], "входные позиции не должны изменяться")
}
