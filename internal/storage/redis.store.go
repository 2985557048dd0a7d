package storage

import (
	"context"
	"errors"

	"github.com/nimasrn/card-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

type RedisStore struct {
	adapter redis.RedisAdapter
}

func NewRedisStore(adapter redis.RedisAdapter) *RedisStore {
	return &RedisStore{adapter: adapter}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.adapter.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.adapter.Set(ctx, key, value, 0)
}

// PutAll sets every key inside one MULTI/EXEC.
func (s *RedisStore) PutAll(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	prefix := s.adapter.Prefix()
	_, err := s.adapter.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for k, v := range values {
			p.Set(ctx, prefix+k, v, 0)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return s.adapter.Del(ctx, keys...)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.adapter.Ping(ctx)
}
