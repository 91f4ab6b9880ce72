// Package testutil содержит общие моки и утилиты для тестирования.
// Моки вынесены сюда для избежания дублирования (DRY).
package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"example.com/storefront/internal/domain"
)

// =============================================================================
// MockOrderRepository — мок для repository.OrderRepository
// =============================================================================

// MockOrderRepository — мок OrderRepository для unit-тестов.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error {
	return m.Called(ctx, orderID, result, paidAt).Error(0)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, orderID string, deliveredAt time.Time) error {
	return m.Called(ctx, orderID, deliveredAt).Error(0)
}

// =============================================================================
// MockPublisher — мок для events.Publisher
// =============================================================================

// MockPublisher — мок Publisher для unit-тестов.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) OrderPlaced(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *MockPublisher) OrderPaid(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *MockPublisher) OrderDelivered(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}
