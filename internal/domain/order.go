// Package domain содержит бизнес-сущности и доменные ошибки витрины.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus — статус заказа в системе.
// Единый тегированный статус вместо пары независимых флагов:
// состояние «доставлен, но не оплачен» непредставимо по построению.
type OrderStatus string

const (
	// OrderStatusCreated — заказ оформлен, ожидает оплаты.
	OrderStatusCreated OrderStatus = "CREATED"

	// OrderStatusPaid — оплата подтверждена платёжным провайдером.
	OrderStatusPaid OrderStatus = "PAID"

	// OrderStatusDelivered — заказ физически доставлен покупателю.
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// allowedTransitions определяет валидные переходы статуса заказа.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated: {OrderStatusPaid},
	OrderStatusPaid:    {OrderStatusDelivered},
	// OrderStatusDelivered — терминальное состояние
}

// PaymentResult — нормализованный результат платёжного подтверждения.
// Сохраняется вместе с переходом в PAID и никогда не очищается.
type PaymentResult struct {
	ID         string // Внешний идентификатор платежа
	Status     string // Статус платежа у провайдера
	UpdateTime string // Время обновления платежа (строка провайдера, как есть)
	PayerEmail string // Email плательщика
}

// ShippingAddress — адрес доставки заказа. Неизменяем после создания.
type ShippingAddress struct {
	Address    string // Улица, дом
	City       string
	PostalCode string
	Country    string
}

// Validate проверяет, что все поля адреса заполнены.
func (a *ShippingAddress) Validate() error {
	for _, field := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// OrderItem — позиция заказа. Снимок товара на момент покупки,
// неизменяема после встраивания в заказ.
type OrderItem struct {
	ProductID string          // Ссылка на товар в каталоге
	Name      string          // Название товара (денормализовано для истории)
	Quantity  int32           // Количество единиц, >= 1
	UnitPrice decimal.Decimal // Цена за единицу, неотрицательная
	Image     string          // Ссылка на изображение товара
}

// Validate проверяет корректность полей позиции.
func (oi *OrderItem) Validate() error {
	if strings.TrimSpace(oi.ProductID) == "" {
		return ErrInvalidProductRef
	}

	if strings.TrimSpace(oi.Name) == "" {
		return ErrInvalidProductName
	}

	if oi.Quantity < 1 {
		return ErrInvalidQuantity
	}

	if oi.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	return nil
}

// Subtotal возвращает стоимость позиции (количество × цена за единицу).
func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt32(oi.Quantity))
}

// Order — заказ, агрегат жизненного цикла оплаты и доставки.
// Доменная сущность без зависимостей от инфраструктуры (GORM, HTTP).
type Order struct {
	ID              string          // Уникальный идентификатор заказа (UUID)
	UserID          string          // ID пользователя-владельца (неизменяем)
	Items           []OrderItem     // Позиции заказа (непустые, создаются атомарно с заказом)
	ShippingAddress ShippingAddress // Адрес доставки
	PaymentMethod   string          // Метод оплаты ("PayPal" и т.п.)

	// Суммы считаются один раз при создании и сохраняются.
	// Пересчёт после создания — только явная аудируемая операция.
	ItemsPrice    decimal.Decimal // Сумма позиций
	ShippingPrice decimal.Decimal // Стоимость доставки
	TaxPrice      decimal.Decimal // Налог
	TotalPrice    decimal.Decimal // Итог = items + shipping + tax

	Status        OrderStatus    // Текущий статус заказа
	PaidAt        *time.Time     // Время подтверждения оплаты (nil до PAID)
	PaymentResult *PaymentResult // Результат платежа (nil до PAID)
	DeliveredAt   *time.Time     // Время доставки (nil до DELIVERED)

	CreatedAt time.Time // Дата создания (неизменяема)
	UpdatedAt time.Time // Дата последнего изменения
}

// Validate проверяет корректность заказа перед созданием.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return ErrInvalidUserID
	}

	if len(o.Items) == 0 {
		return ErrEmptyCart
	}

	for i := range o.Items {
		if err := o.Items[i].Validate(); err != nil {
			return err
		}
	}

	if err := o.ShippingAddress.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(o.PaymentMethod) == "" {
		return ErrInvalidPaymentMethod
	}

	return nil
}

// IsPaid возвращает true, если оплата заказа подтверждена.
// Доставленный заказ по построению оплачен.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusDelivered
}

// IsDelivered возвращает true, если заказ доставлен.
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// CanTransitionTo проверяет, допустим ли переход в указанный статус.
func (o *Order) CanTransitionTo(newStatus OrderStatus) bool {
	allowed, ok := allowedTransitions[o.Status]
	if !ok {
		return false // Терминальное состояние
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// Pay переводит заказ в PAID, фиксируя результат платежа и время.
// Переход false→true выполняется ровно один раз; повторная оплата — ErrAlreadyPaid.
func (o *Order) Pay(result PaymentResult, at time.Time) error {
	if !o.CanTransitionTo(OrderStatusPaid) {
		if o.IsPaid() {
			return ErrAlreadyPaid
		}
		return ErrInvalidTransition
	}

	o.Status = OrderStatusPaid
	o.PaidAt = &at
	o.PaymentResult = &result
	o.UpdatedAt = at
	return nil
}

// Deliver переводит заказ в DELIVERED.
// Разрешён только из PAID: неоплаченный заказ — ErrOrderNotPaid,
// доставленный — ErrAlreadyDelivered.
func (o *Order) Deliver(at time.Time) error {
	if !o.CanTransitionTo(OrderStatusDelivered) {
		if o.IsDelivered() {
			return ErrAlreadyDelivered
		}
		return ErrOrderNotPaid
	}

	o.Status = OrderStatusDelivered
	o.DeliveredAt = &at
	o.UpdatedAt = at
	return nil
}
