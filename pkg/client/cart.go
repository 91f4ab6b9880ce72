package client

import (
	"example.com/storefront/internal/domain"
	"example.com/storefront/internal/pricing"
)

// Cart — корзина покупателя до оформления заказа.
// Считает суммы локально той же формулой, что и сервер, — только для
// отображения. После оформления заказа авторитетны суммы из ответа API:
// сервер всегда пересчитывает их сам и присланным не доверяет.
type Cart struct {
	engine *pricing.Engine
	items  []OrderItem
}

// NewCart создаёт корзину с движком расчёта для отображаемых сумм.
func NewCart(engine *pricing.Engine) *Cart {
	return &Cart{engine: engine}
}

// Add добавляет позицию в корзину. Повторное добавление товара
// увеличивает количество существующей позиции.
func (c *Cart) Add(item OrderItem) {
	for i := range c.items {
		if c.items[i].Product == item.Product {
			c.items[i].Qty += item.Qty
			return
		}
	}
	c.items = append(c.items, item)
}

// Remove убирает позицию из корзины по ID товара.
func (c *Cart) Remove(productID string) {
	for i := range c.items {
		if c.items[i].Product == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items возвращает копию позиций корзины.
func (c *Cart) Items() []OrderItem {
	items := make([]OrderItem, len(c.items))
	copy(items, c.items)
	return items
}

// Empty возвращает true для пустой корзины.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Totals возвращает отображаемые суммы корзины.
func (c *Cart) Totals() pricing.Totals {
	domainItems := make([]domain.OrderItem, len(c.items))
	for i, item := range c.items {
		domainItems[i] = domain.OrderItem{
			ProductID: item.Product,
			Name:      item.Name,
			Quantity:  item.Qty,
			UnitPrice: item.Price,
			Image:     item.Image,
		}
	}
	return c.engine.ComputeTotals(domainItems)
}

// CheckoutInput собирает из корзины запрос на оформление заказа.
func (c *Cart) CheckoutInput(address ShippingAddress, paymentMethod string) CreateOrderInput {
	return CreateOrderInput{
		OrderItems:      c.Items(),
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
	}
}
