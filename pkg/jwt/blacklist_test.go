// Package jwt — тесты для JWT Blacklist.
// Используется miniredis для быстрых тестов без Docker.
package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis создаёт miniredis и возвращает клиента.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "не удалось запустить miniredis")
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// TestBlacklist_AddAndCheck проверяет добавление и проверку токена.
func TestBlacklist_AddAndCheck(t *testing.T) {
	client, mr := setupTestRedis(t)
	bl := NewBlacklist(client)
	ctx := context.Background()

	t.Run("токен с положительным TTL попадает в blacklist", func(t *testing.T) {
		jti := "test-jti-001"
		err := bl.Add(ctx, jti, time.Now().Add(10*time.Minute))
		require.NoError(t, err)

		assert.True(t, mr.Exists(prefixToken+jti))

		revoked, err := bl.Check(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("истёкший токен не сохраняется", func(t *testing.T) {
		jti := "test-jti-expired"
		err := bl.Add(ctx, jti, time.Now().Add(-time.Minute))
		require.NoError(t, err)

		assert.False(t, mr.Exists(prefixToken+jti))
	})

	t.Run("неизвестный jti не отозван", func(t *testing.T) {
		revoked, err := bl.Check(ctx, "unknown-jti")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

// TestBlacklist_InvalidateUser проверяет отзыв всех токенов пользователя.
func TestBlacklist_InvalidateUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	bl := NewBlacklist(client)
	ctx := context.Background()

	// Токен выдан до инвалидации
	issuedBefore := time.Now().Add(-time.Hour)

	err := bl.InvalidateUser(ctx, "user-123", 24*time.Hour)
	require.NoError(t, err)

	invalidated, err := bl.IsUserInvalidated(ctx, "user-123", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated, "старый токен должен считаться отозванным")

	// Токен выдан после инвалидации
	issuedAfter := time.Now().Add(time.Minute)
	invalidated, err = bl.IsUserInvalidated(ctx, "user-123", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalidated, "новый токен остаётся валидным")

	// Другой пользователь не затронут
	invalidated, err = bl.IsUserInvalidated(ctx, "user-456", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)
}
