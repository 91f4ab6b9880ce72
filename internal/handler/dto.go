package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"example.com/storefront/internal/domain"
)

// === Request DTOs ===

// CreateOrderRequest — запрос на оформление заказа.
// Имена полей повторяют формат браузерного клиента витрины.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

// OrderItemRequest — позиция в запросе на оформление заказа.
// price — цена каталога на момент покупки; итоговые суммы сервер
// считает сам, присланные клиентом суммы игнорируются.
type OrderItemRequest struct {
	Product string          `json:"product" binding:"required"`
	Name    string          `json:"name" binding:"required"`
	Qty     int32           `json:"qty" binding:"required,min=1"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image"`
}

// ShippingAddressRequest — адрес доставки в запросе.
type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// PayOrderRequest — платёжное подтверждение от провайдера.
// Форма повторяет ответ PayPal SDK; amount и currency обязательны —
// по ним сверяется сумма платежа с суммой заказа.
type PayOrderRequest struct {
	ID         string          `json:"id" binding:"required"`
	Status     string          `json:"status" binding:"required"`
	UpdateTime string          `json:"update_time"`
	Payer      PayerRequest    `json:"payer"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency"`
}

// PayerRequest — данные плательщика в подтверждении.
type PayerRequest struct {
	EmailAddress string `json:"email_address"`
}

// === Response DTOs ===

// OrderResponse — заказ в ответе API.
// Суммы сериализуются числами с двумя знаками после запятой.
type OrderResponse struct {
	ID              string                  `json:"id"`
	User            string                  `json:"user"`
	OrderItems      []OrderItemResponse     `json:"orderItems"`
	ShippingAddress ShippingAddressResponse `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`

	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`

	Status        string                 `json:"status"`
	IsPaid        bool                   `json:"isPaid"`
	PaidAt        *time.Time             `json:"paidAt,omitempty"`
	PaymentResult *PaymentResultResponse `json:"paymentResult,omitempty"`
	IsDelivered   bool                   `json:"isDelivered"`
	DeliveredAt   *time.Time             `json:"deliveredAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItemResponse — позиция заказа в ответе.
type OrderItemResponse struct {
	Product string          `json:"product"`
	Name    string          `json:"name"`
	Qty     int32           `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image,omitempty"`
}

// ShippingAddressResponse — адрес доставки в ответе.
type ShippingAddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResultResponse — результат платежа в ответе.
// Имена полей как у провайдера.
type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// PayPalConfigResponse — публичная конфигурация PayPal для клиента.
type PayPalConfigResponse struct {
	ClientID string `json:"clientId"`
}

// === Конвертация domain -> DTO ===

// orderToResponse преобразует доменный заказ в OrderResponse.
func orderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			Product: item.ProductID,
			Name:    item.Name,
			Qty:     item.Quantity,
			Price:   item.UnitPrice,
			Image:   item.Image,
		}
	}

	resp := OrderResponse{
		ID:         o.ID,
		User:       o.UserID,
		OrderItems: items,
		ShippingAddress: ShippingAddressResponse{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		Status:        string(o.Status),
		IsPaid:        o.IsPaid(),
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered(),
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	if o.PaymentResult != nil {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.PayerEmail,
		}
	}

	return resp
}

// ordersToResponse преобразует список заказов.
func ordersToResponse(orders []*domain.Order) []OrderResponse {
	result := make([]OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = orderToResponse(o)
	}
	return result
}
