// Package repository содержит реализацию доступа к данным витрины.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/storefront/internal/domain"
)

// OrderRepository определяет интерфейс для работы с заказами в БД.
type OrderRepository interface {
	// Create создаёт новый заказ с позициями.
	// Выполняется в транзакции для атомарности: заказ без позиций невозможен.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID возвращает заказ по ID с загруженными позициями.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// ListByUserID возвращает заказы пользователя, новые первыми.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	// ListAll возвращает все заказы витрины, новые первыми. Только для админов.
	ListAll(ctx context.Context) ([]*domain.Order, error)

	// MarkPaid атомарно переводит заказ CREATED -> PAID, сохраняя результат платежа.
	// Условный UPDATE по статусу: конкурентные оплаты получают ErrAlreadyPaid.
	MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error

	// MarkDelivered атомарно переводит заказ PAID -> DELIVERED.
	MarkDelivered(ctx context.Context, orderID string, deliveredAt time.Time) error
}

// OrderModel — GORM модель для таблицы orders.
// Отделена от доменной сущности: адрес и результат платежа развёрнуты в колонки.
type OrderModel struct {
	ID            string `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID        string `gorm:"column:user_id;type:varchar(36);not null;index"`
	Status        string `gorm:"column:status;type:varchar(20);not null;index"`
	PaymentMethod string `gorm:"column:payment_method;type:varchar(50);not null"`

	ShipAddress    string `gorm:"column:ship_address;type:varchar(255);not null"`
	ShipCity       string `gorm:"column:ship_city;type:varchar(100);not null"`
	ShipPostalCode string `gorm:"column:ship_postal_code;type:varchar(20);not null"`
	ShipCountry    string `gorm:"column:ship_country;type:varchar(100);not null"`

	ItemsPrice    decimal.Decimal `gorm:"column:items_price;type:decimal(12,2);not null"`
	ShippingPrice decimal.Decimal `gorm:"column:shipping_price;type:decimal(12,2);not null"`
	TaxPrice      decimal.Decimal `gorm:"column:tax_price;type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null"`

	PaidAt            *time.Time `gorm:"column:paid_at"`
	PaymentID         *string    `gorm:"column:payment_id;type:varchar(64)"`
	PaymentStatus     *string    `gorm:"column:payment_status;type:varchar(20)"`
	PaymentUpdateTime *string    `gorm:"column:payment_update_time;type:varchar(64)"`
	PayerEmail        *string    `gorm:"column:payer_email;type:varchar(255)"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`

	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName возвращает имя таблицы в БД.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel — GORM модель для таблицы order_items.
type OrderItemModel struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     string          `gorm:"column:order_id;type:varchar(36);not null;index"`
	ProductID   string          `gorm:"column:product_id;type:varchar(36);not null"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null"`
	Quantity    int32           `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	Image       string          `gorm:"column:image;type:varchar(512)"`
}

// TableName возвращает имя таблицы в БД.
func (OrderItemModel) TableName() string {
	return "order_items"
}

// toDomain конвертирует GORM модель заказа в доменную сущность.
func (m *OrderModel) toDomain() *domain.Order {
	order := &domain.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Status:        domain.OrderStatus(m.Status),
		PaymentMethod: m.PaymentMethod,
		ShippingAddress: domain.ShippingAddress{
			Address:    m.ShipAddress,
			City:       m.ShipCity,
			PostalCode: m.ShipPostalCode,
			Country:    m.ShipCountry,
		},
		ItemsPrice:    m.ItemsPrice,
		ShippingPrice: m.ShippingPrice,
		TaxPrice:      m.TaxPrice,
		TotalPrice:    m.TotalPrice,
		PaidAt:        m.PaidAt,
		DeliveredAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Items:         make([]domain.OrderItem, len(m.Items)),
	}

	// Результат платежа собирается из колонок только если платёж был
	if m.PaymentID != nil {
		result := &domain.PaymentResult{ID: *m.PaymentID}
		if m.PaymentStatus != nil {
			result.Status = *m.PaymentStatus
		}
		if m.PaymentUpdateTime != nil {
			result.UpdateTime = *m.PaymentUpdateTime
		}
		if m.PayerEmail != nil {
			result.PayerEmail = *m.PayerEmail
		}
		order.PaymentResult = result
	}

	for i, item := range m.Items {
		order.Items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
		}
	}

	return order
}

// orderModelFromDomain конвертирует доменную сущность заказа в GORM модель.
func orderModelFromDomain(o *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PaymentMethod:  o.PaymentMethod,
		ShipAddress:    o.ShippingAddress.Address,
		ShipCity:       o.ShippingAddress.City,
		ShipPostalCode: o.ShippingAddress.PostalCode,
		ShipCountry:    o.ShippingAddress.Country,
		ItemsPrice:     o.ItemsPrice,
		ShippingPrice:  o.ShippingPrice,
		TaxPrice:       o.TaxPrice,
		TotalPrice:     o.TotalPrice,
		PaidAt:         o.PaidAt,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]OrderItemModel, len(o.Items)),
	}

	if o.PaymentResult != nil {
		model.PaymentID = &o.PaymentResult.ID
		model.PaymentStatus = &o.PaymentResult.Status
		model.PaymentUpdateTime = &o.PaymentResult.UpdateTime
		model.PayerEmail = &o.PaymentResult.PayerEmail
	}

	for i, item := range o.Items {
		model.Items[i] = OrderItemModel{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Image:       item.Image,
		}
	}

	return model
}

// orderRepository — GORM реализация OrderRepository.
type orderRepository struct {
	db        *gorm.DB
	opTimeout time.Duration
}

// NewOrderRepository создаёт новый репозиторий заказов.
// opTimeout ограничивает каждую операцию с БД.
func NewOrderRepository(db *gorm.DB, opTimeout time.Duration) OrderRepository {
	return &orderRepository{db: db, opTimeout: opTimeout}
}

// Create создаёт новый заказ с позициями в одной транзакции.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	model := orderModelFromDomain(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Позиции GORM создаст через ассоциацию Items
		return tx.Create(model).Error
	})
	if err != nil {
		return classifyStoreError(err)
	}

	// Обновляем timestamps в доменной сущности
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID возвращает заказ по ID с загруженными позициями.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var model OrderModel

	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, classifyStoreError(err)
	}

	return model.toDomain(), nil
}

// ListByUserID возвращает заказы пользователя, новые первыми.
func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

// ListAll возвращает все заказы витрины, новые первыми.
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *orderRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*domain.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var models []OrderModel

	if err := scope(r.db.WithContext(ctx)).
		Preload("Items").
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, classifyStoreError(err)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = models[i].toDomain()
	}

	return orders, nil
}

// MarkPaid переводит заказ CREATED -> PAID условным UPDATE.
// Условие по статусу делает переход атомарным: из двух конкурентных
// оплат ровно одна получит RowsAffected == 1.
func (r *orderRepository) MarkPaid(ctx context.Context, id string, result domain.PaymentResult, paidAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	updates := map[string]interface{}{
		"status":              string(domain.OrderStatusPaid),
		"paid_at":             paidAt,
		"payment_id":          result.ID,
		"payment_status":      result.Status,
		"payment_update_time": result.UpdateTime,
		"payer_email":         result.PayerEmail,
		"updated_at":          paidAt,
	}

	res := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(domain.OrderStatusCreated)).
		Updates(updates)

	if res.Error != nil {
		return classifyStoreError(res.Error)
	}

	if res.RowsAffected == 0 {
		// Заказ не найден либо статус уже не CREATED — уточняем
		return r.resolvePayConflict(ctx, id)
	}

	return nil
}

// MarkDelivered переводит заказ PAID -> DELIVERED условным UPDATE.
func (r *orderRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(domain.OrderStatusPaid)).
		Updates(map[string]interface{}{
			"status":       string(domain.OrderStatusDelivered),
			"delivered_at": deliveredAt,
			"updated_at":   deliveredAt,
		})

	if res.Error != nil {
		return classifyStoreError(res.Error)
	}

	if res.RowsAffected == 0 {
		return r.resolveDeliverConflict(ctx, id)
	}

	return nil
}

// resolvePayConflict определяет причину неудачного перехода в PAID.
func (r *orderRepository) resolvePayConflict(ctx context.Context, id string) error {
	status, err := r.currentStatus(ctx, id)
	if err != nil {
		return err
	}

	switch status {
	case domain.OrderStatusPaid, domain.OrderStatusDelivered:
		return domain.ErrAlreadyPaid
	default:
		return domain.ErrInvalidTransition
	}
}

// resolveDeliverConflict определяет причину неудачного перехода в DELIVERED.
func (r *orderRepository) resolveDeliverConflict(ctx context.Context, id string) error {
	status, err := r.currentStatus(ctx, id)
	if err != nil {
		return err
	}

	switch status {
	case domain.OrderStatusDelivered:
		return domain.ErrAlreadyDelivered
	case domain.OrderStatusCreated:
		return domain.ErrOrderNotPaid
	default:
		return domain.ErrInvalidTransition
	}
}

func (r *orderRepository) currentStatus(ctx context.Context, id string) (domain.OrderStatus, error) {
	var model OrderModel

	if err := r.db.WithContext(ctx).
		Select("status").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrOrderNotFound
		}
		return "", classifyStoreError(err)
	}

	return domain.OrderStatus(model.Status), nil
}

func (r *orderRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// classifyStoreError переводит инфраструктурные ошибки БД в ErrStoreUnavailable.
// Ошибки данных (constraint и т.п.) возвращаются как есть.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// Сетевые ошибки драйвера MySQL приходят текстом
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "invalid connection") ||
		strings.Contains(msg, "broken pipe") {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}
