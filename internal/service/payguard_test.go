package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis создаёт miniredis и клиент для тестов.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "Ошибка запуска miniredis")
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestRedisPayGuard_Acquire тестирует захват замка оплаты.
func TestRedisPayGuard_Acquire(t *testing.T) {
	guard := NewRedisPayGuard(setupRedis(t))
	ctx := context.Background()

	// Первый захват успешен
	ok, err := guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный захват того же заказа отклоняется
	ok, err = guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	assert.False(t, ok)

	// Замок другого заказа независим
	ok, err = guard.Acquire(ctx, "order-456")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRedisPayGuard_Release тестирует освобождение замка.
func TestRedisPayGuard_Release(t *testing.T) {
	guard := NewRedisPayGuard(setupRedis(t))
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	require.True(t, ok)

	guard.Release(ctx, "order-123")

	// После освобождения замок снова доступен
	ok, err = guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestNoopPayGuard тестирует заглушку без сериализации.
func TestNoopPayGuard(t *testing.T) {
	guard := NewNoopPayGuard()
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный захват тоже успешен — заглушка не сериализует
	ok, err = guard.Acquire(ctx, "order-123")
	require.NoError(t, err)
	assert.True(t, ok)

	guard.Release(ctx, "order-123")
}
