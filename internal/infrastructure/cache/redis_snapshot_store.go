// Package cache almacén de instantáneas del tablero sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
)

var _ ports.SnapshotStore = (*RedisSnapshotStore)(nil)

// KeyPrefix prefijo de las claves de instantáneas, ej: "megamart:snapshot:ventas".
const KeyPrefix = "megamart:snapshot:"

// NewRedis crea el cliente y valida la conexión al arrancar.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: URL inválida: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RedisSnapshotStore implementa ports.SnapshotStore con SET/GET y TTL nativo de Redis.
type RedisSnapshotStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisSnapshotStore usa KeyPrefix si prefix está vacío.
func NewRedisSnapshotStore(rdb redis.Cmdable, prefix string) *RedisSnapshotStore {
	if prefix == "" {
		prefix = KeyPrefix
	}
	return &RedisSnapshotStore{rdb: rdb, prefix: prefix}
}

func (s *RedisSnapshotStore) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: guardar instantánea %s: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: leer instantánea %s: %w", key, err)
	}
	return b, true, nil
}
