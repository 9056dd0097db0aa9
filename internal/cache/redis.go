package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductsKey = "catalog:products"
	TagsKey     = "catalog:tags"
)

// RedisCache кэширует публичную выдачу каталога.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Info("Подключение к Redis установлено", zap.String("addr", addr))
	return &RedisCache{client: client, ttl: ttl, log: log}, nil
}

// Get возвращает закэшированное значение либо found=false.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

// InvalidateCatalog сбрасывает кэш каталога после мутаций админки.
func (c *RedisCache) InvalidateCatalog(ctx context.Context) {
	if err := c.client.Del(ctx, ProductsKey, TagsKey).Err(); err != nil {
		c.log.Warn("Не удалось сбросить кэш каталога", zap.Error(err))
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
