// Package events публикует события жизненного цикла заказа в Kafka.
// Публикация best-effort: выполняется после коммита в БД, ошибка
// публикации логируется и не откатывает операцию.
package events

import (
	"context"
	"encoding/json"
	"time"

	"example.com/storefront/internal/domain"
	"example.com/storefront/pkg/circuitbreaker"
	"example.com/storefront/pkg/kafka"
	"example.com/storefront/pkg/logger"
)

// Типы событий заказа.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderPaid      = "order.paid"
	EventOrderDelivered = "order.delivered"
)

// OrderEvent — событие жизненного цикла заказа.
// Ключ сообщения — ID заказа: события одного заказа попадают в одну партицию
// и читаются консьюмерами по порядку.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice string    `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует события жизненного цикла заказа.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *domain.Order)
	OrderPaid(ctx context.Context, order *domain.Order)
	OrderDelivered(ctx context.Context, order *domain.Order)
}

// kafkaPublisher — реализация Publisher поверх Kafka.
// Circuit breaker защищает обработку запросов от зависаний брокера:
// при открытом breaker события пропускаются без ожидания.
type kafkaPublisher struct {
	producer *kafka.Producer
	breaker  *circuitbreaker.Breaker
	topic    string
}

// NewKafkaPublisher создаёт Publisher поверх Kafka producer.
func NewKafkaPublisher(producer *kafka.Producer, breaker *circuitbreaker.Breaker) Publisher {
	return &kafkaPublisher{
		producer: producer,
		breaker:  breaker,
		topic:    producer.Topic(),
	}
}

func (p *kafkaPublisher) OrderPlaced(ctx context.Context, order *domain.Order) {
	p.publish(ctx, EventOrderPlaced, order)
}

func (p *kafkaPublisher) OrderPaid(ctx context.Context, order *domain.Order) {
	p.publish(ctx, EventOrderPaid, order)
}

func (p *kafkaPublisher) OrderDelivered(ctx context.Context, order *domain.Order) {
	p.publish(ctx, EventOrderDelivered, order)
}

// publish сериализует и отправляет событие через circuit breaker.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, order *domain.Order) {
	log := logger.FromContext(ctx)

	event := OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID).
			Msg("Ошибка сериализации события заказа")
		return
	}

	err = p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.producer.Send(ctx, p.topic, []byte(order.ID), payload)
	})
	if err != nil {
		// Best-effort: событие теряется, операция с заказом уже зафиксирована
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID).
			Msg("Событие заказа не опубликовано")
		return
	}

	log.Debug().
		Str("event_type", eventType).
		Str("order_id", order.ID).
		Msg("Событие заказа опубликовано")
}

// NoopPublisher — заглушка для окружений без Kafka и для тестов.
type NoopPublisher struct{}

// NewNoopPublisher создаёт Publisher, который ничего не публикует.
func NewNoopPublisher() Publisher {
	return NoopPublisher{}
}

func (NoopPublisher) OrderPlaced(context.Context, *domain.Order)    {}
func (NoopPublisher) OrderPaid(context.Context, *domain.Order)      {}
func (NoopPublisher) OrderDelivered(context.Context, *domain.Order) {}
