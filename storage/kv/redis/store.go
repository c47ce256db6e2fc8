// Package redis backs the key-value store and the session broadcaster with a
// Redis server, letting several client processes share one session the way
// browser tabs share localStorage.
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mathstutor/mathstutor-go/core"
)

// NewClient connects per the configured address and verifies the connection
// with a short ping.
func NewClient(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

type Store struct {
	client *redis.Client
}

var _ core.KeyValue = (*Store)(nil)

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", core.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get "+key)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(s.client.Set(ctx, key, value, 0).Err(), "redis set "+key)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.client.Del(ctx, keys...).Err(), "redis del")
}
