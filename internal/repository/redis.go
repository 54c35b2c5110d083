package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "themepark:ledger:"

// RedisStore хранит каждый журнал в отдельном строковом ключе Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore подключается к Redis по адресу addr и проверяет соединение.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return newRedisStore(client), nil
}

func newRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(name string) string {
	return redisKeyPrefix + name
}

// Load возвращает сохранённый журнал или nil, если ключа нет.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return data, nil
}

// Save перезаписывает журнал целиком, без срока жизни ключа.
func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, redisKey(name), string(data), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
