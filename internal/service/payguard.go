package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/storefront/pkg/logger"
)

// payGuardTTL ограничивает время удержания замка оплаты.
// Страхует от утечки замка при падении процесса между Acquire и Release.
const payGuardTTL = 30 * time.Second

// PayGuard сериализует конкурентные оплаты одного заказа.
type PayGuard interface {
	// Acquire пытается захватить замок оплаты заказа.
	// Возвращает false, если оплата уже выполняется другим запросом.
	Acquire(ctx context.Context, orderID string) (bool, error)

	// Release освобождает замок оплаты заказа.
	Release(ctx context.Context, orderID string)
}

// redisPayGuard — реализация PayGuard на Redis SETNX.
type redisPayGuard struct {
	client *redis.Client
}

// NewRedisPayGuard создаёт PayGuard поверх Redis.
func NewRedisPayGuard(client *redis.Client) PayGuard {
	return &redisPayGuard{client: client}
}

func payGuardKey(orderID string) string {
	return fmt.Sprintf("order:pay:%s", orderID)
}

// Acquire захватывает замок через SETNX с TTL.
func (g *redisPayGuard) Acquire(ctx context.Context, orderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, payGuardKey(orderID), "1", payGuardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка захвата замка оплаты: %w", err)
	}
	return ok, nil
}

// Release освобождает замок. Ошибка только логируется:
// TTL всё равно снимет замок.
func (g *redisPayGuard) Release(ctx context.Context, orderID string) {
	if err := g.client.Del(ctx, payGuardKey(orderID)).Err(); err != nil {
		l := logger.FromContext(ctx)
		l.Warn().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка освобождения замка оплаты")
	}
}

// noopPayGuard пропускает все оплаты без сериализации.
// Для окружений без Redis: условный UPDATE в БД остаётся последней защитой.
type noopPayGuard struct{}

// NewNoopPayGuard создаёт PayGuard без сериализации.
func NewNoopPayGuard() PayGuard {
	return noopPayGuard{}
}

func (noopPayGuard) Acquire(context.Context, string) (bool, error) { return true, nil }
func (noopPayGuard) Release(context.Context, string)               {}
