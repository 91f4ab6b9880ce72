package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain"
)

// TestOrderEvent_JSON тестирует формат события для консьюмеров.
func TestOrderEvent_JSON(t *testing.T) {
	event := OrderEvent{
		Type:       EventOrderPaid,
		OrderID:    "order-123",
		UserID:     "user-123",
		Status:     "PAID",
		TotalPrice: "67.50",
		OccurredAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "order.paid", decoded["type"])
	assert.Equal(t, "order-123", decoded["order_id"])
	assert.Equal(t, "user-123", decoded["user_id"])
	assert.Equal(t, "PAID", decoded["status"])
	assert.Equal(t, "67.50", decoded["total_price"])
	assert.Equal(t, "2026-08-28T12:00:00Z", decoded["occurred_at"])
}

// TestNoopPublisher тестирует заглушку публикации.
func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher()

	order := &domain.Order{
		ID:         "order-123",
		UserID:     "user-123",
		Status:     domain.OrderStatusCreated,
		TotalPrice: decimal.RequireFromString("67.50"),
	}

	// Не должно паниковать и что-либо публиковать
	publisher.OrderPlaced(t.Context(), order)
	publisher.OrderPaid(t.Context(), order)
	publisher.OrderDelivered(t.Context(), order)
}
