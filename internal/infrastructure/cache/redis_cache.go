package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisAlertCache memoiza snapshots de alertas en Redis con un TTL corto.
// Es estrictamente opcional: si Redis no está disponible, el caso de uso
// degrada a recalcular siempre.
type RedisAlertCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAlertCache abre un cliente Redis para la caché de alertas.
func NewRedisAlertCache(addr, password string, db int, ttl time.Duration) *RedisAlertCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisAlertCache{client: client, ttl: ttl}
}

// Ping verifica la conexión al arrancar.
func (c *RedisAlertCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisAlertCache) Close() error {
	return c.client.Close()
}

// Get devuelve el snapshot serializado si existe.
func (c *RedisAlertCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set guarda el snapshot serializado con el TTL configurado.
func (c *RedisAlertCache) Set(ctx context.Context, key string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}
