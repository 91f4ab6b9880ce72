// Package service содержит бизнес-логику жизненного цикла заказа.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/storefront/internal/domain"
	"example.com/storefront/internal/events"
	"example.com/storefront/internal/payment"
	"example.com/storefront/internal/pricing"
	"example.com/storefront/internal/repository"
	"example.com/storefront/pkg/logger"
	"example.com/storefront/pkg/metrics"
)

// Requester — аутентифицированный инициатор операции.
type Requester struct {
	UserID  string
	IsAdmin bool
}

// PlaceOrderInput — данные для оформления заказа.
// Суммы клиент не передаёт: сервер считает их сам из позиций.
type PlaceOrderInput struct {
	Items           []domain.OrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// OrderService определяет интерфейс бизнес-логики заказов.
type OrderService interface {
	// PlaceOrder оформляет новый заказ от имени запрашивающего.
	// Суммы рассчитываются на сервере, заказ создаётся в статусе CREATED.
	PlaceOrder(ctx context.Context, req Requester, input PlaceOrderInput) (*domain.Order, error)

	// GetOrder возвращает заказ по ID.
	// Доступен владельцу и администратору, остальным — ErrForbidden.
	GetOrder(ctx context.Context, req Requester, orderID string) (*domain.Order, error)

	// ListMyOrders возвращает заказы запрашивающего, новые первыми.
	ListMyOrders(ctx context.Context, req Requester) ([]*domain.Order, error)

	// ListAllOrders возвращает все заказы витрины. Только для администраторов.
	ListAllOrders(ctx context.Context, req Requester) ([]*domain.Order, error)

	// PayOrder проверяет платёжное подтверждение и переводит заказ в PAID.
	PayOrder(ctx context.Context, req Requester, orderID string, conf payment.Confirmation) (*domain.Order, error)

	// DeliverOrder отмечает заказ доставленным. Только для администраторов.
	DeliverOrder(ctx context.Context, req Requester, orderID string) (*domain.Order, error)
}

// orderService — реализация OrderService.
type orderService struct {
	repo      repository.OrderRepository
	pricing   *pricing.Engine
	verifier  *payment.Verifier
	publisher events.Publisher
	payGuard  PayGuard
	now       func() time.Time
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(
	repo repository.OrderRepository,
	pricingEngine *pricing.Engine,
	verifier *payment.Verifier,
	publisher events.Publisher,
	payGuard PayGuard,
) OrderService {
	return &orderService{
		repo:      repo,
		pricing:   pricingEngine,
		verifier:  verifier,
		publisher: publisher,
		payGuard:  payGuard,
		now:       time.Now,
	}
}

// PlaceOrder оформляет новый заказ.
func (s *orderService) PlaceOrder(ctx context.Context, req Requester, input PlaceOrderInput) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	now := s.now()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderStatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := order.Validate(); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", req.UserID).
			Msg("Ошибка валидации заказа")
		return nil, err
	}

	// Суммы считает сервер — присланные клиентом значения игнорируются
	totals := s.pricing.ComputeTotals(order.Items)
	order.ItemsPrice = totals.ItemsPrice
	order.ShippingPrice = totals.ShippingPrice
	order.TaxPrice = totals.TaxPrice
	order.TotalPrice = totals.TotalPrice

	if err := s.repo.Create(ctx, order); err != nil {
		log.Error().
			Err(err).
			Str("user_id", req.UserID).
			Msg("Ошибка создания заказа")
		return nil, fmt.Errorf("ошибка создания заказа: %w", err)
	}

	metrics.OrdersPlacedTotal.Inc()
	s.publisher.OrderPlaced(ctx, order)

	log.Info().
		Str("order_id", order.ID).
		Str("user_id", req.UserID).
		Str("total_price", order.TotalPrice.StringFixed(2)).
		Int("items_count", len(order.Items)).
		Msg("Заказ успешно создан")

	return order, nil
}

// GetOrder возвращает заказ по ID с проверкой доступа.
func (s *orderService) GetOrder(ctx context.Context, req Requester, orderID string) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			log.Debug().
				Str("order_id", orderID).
				Msg("Заказ не найден")
			return nil, err
		}
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка получения заказа")
		return nil, fmt.Errorf("ошибка получения заказа: %w", err)
	}

	if err := s.authorize(req, order); err != nil {
		log.Warn().
			Str("order_id", orderID).
			Str("user_id", req.UserID).
			Msg("Попытка доступа к чужому заказу")
		return nil, err
	}

	return order, nil
}

// ListMyOrders возвращает заказы запрашивающего.
func (s *orderService) ListMyOrders(ctx context.Context, req Requester) ([]*domain.Order, error) {
	log := logger.FromContext(ctx)

	orders, err := s.repo.ListByUserID(ctx, req.UserID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", req.UserID).
			Msg("Ошибка получения списка заказов пользователя")
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}

	return orders, nil
}

// ListAllOrders возвращает все заказы витрины.
func (s *orderService) ListAllOrders(ctx context.Context, req Requester) ([]*domain.Order, error) {
	log := logger.FromContext(ctx)

	if !req.IsAdmin {
		log.Warn().
			Str("user_id", req.UserID).
			Msg("Попытка получить все заказы без прав администратора")
		return nil, domain.ErrForbidden
	}

	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Msg("Ошибка получения списка всех заказов")
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}

	return orders, nil
}

// PayOrder проверяет платёжное подтверждение и переводит заказ в PAID.
// Redis-замок сериализует конкурентные оплаты одного заказа;
// последняя защита — условный UPDATE по статусу в БД.
func (s *orderService) PayOrder(ctx context.Context, req Requester, orderID string, conf payment.Confirmation) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	order, err := s.GetOrder(ctx, req, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		log.Warn().
			Str("order_id", orderID).
			Msg("Попытка повторной оплаты заказа")
		return nil, domain.ErrAlreadyPaid
	}

	acquired, err := s.payGuard.Acquire(ctx, orderID)
	if err != nil {
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка захвата замка оплаты")
		return nil, fmt.Errorf("ошибка оплаты заказа: %w", err)
	}
	if !acquired {
		log.Warn().
			Str("order_id", orderID).
			Msg("Оплата заказа уже выполняется")
		return nil, domain.ErrPaymentInProgress
	}
	defer s.payGuard.Release(ctx, orderID)

	result, err := s.verifier.Verify(conf, order.TotalPrice)
	if err != nil {
		metrics.PaymentFailuresTotal.WithLabelValues(paymentFailureReason(err)).Inc()
		log.Warn().
			Err(err).
			Str("order_id", orderID).
			Str("payment_id", conf.ID).
			Msg("Платёжное подтверждение отклонено")
		return nil, err
	}

	paidAt := s.now()
	if err := s.repo.MarkPaid(ctx, orderID, result, paidAt); err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) || errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка сохранения оплаты заказа")
		return nil, fmt.Errorf("ошибка оплаты заказа: %w", err)
	}

	order.Status = domain.OrderStatusPaid
	order.PaidAt = &paidAt
	order.PaymentResult = &result
	order.UpdatedAt = paidAt

	metrics.OrdersPaidTotal.Inc()
	s.publisher.OrderPaid(ctx, order)

	log.Info().
		Str("order_id", orderID).
		Str("payment_id", result.ID).
		Msg("Заказ успешно оплачен")

	return order, nil
}

// DeliverOrder отмечает заказ доставленным.
func (s *orderService) DeliverOrder(ctx context.Context, req Requester, orderID string) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	if !req.IsAdmin {
		log.Warn().
			Str("order_id", orderID).
			Str("user_id", req.UserID).
			Msg("Попытка отметить доставку без прав администратора")
		return nil, domain.ErrForbidden
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка получения заказа для доставки")
		return nil, fmt.Errorf("ошибка получения заказа: %w", err)
	}

	deliveredAt := s.now()
	if err := s.repo.MarkDelivered(ctx, orderID, deliveredAt); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyDelivered),
			errors.Is(err, domain.ErrOrderNotPaid),
			errors.Is(err, domain.ErrOrderNotFound):
			return nil, err
		}
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка сохранения доставки заказа")
		return nil, fmt.Errorf("ошибка доставки заказа: %w", err)
	}

	order.Status = domain.OrderStatusDelivered
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = deliveredAt

	s.publisher.OrderDelivered(ctx, order)

	log.Info().
		Str("order_id", orderID).
		Msg("Заказ отмечен доставленным")

	return order, nil
}

// authorize проверяет доступ запрашивающего к заказу.
// Чужой заказ отдаёт ErrForbidden, а не ErrOrderNotFound:
// ID заказов — непересекающиеся UUID, утечка факта существования не критична.
func (s *orderService) authorize(req Requester, order *domain.Order) error {
	if req.IsAdmin || order.UserID == req.UserID {
		return nil
	}
	return domain.ErrForbidden
}

// paymentFailureReason возвращает метку причины для метрики отказов оплаты.
func paymentFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidConfirmation):
		return "invalid_confirmation"
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return "not_completed"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	default:
		return "other"
	}
}
