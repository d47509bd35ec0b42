package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/raywall/fast-mock-server/pkg/config"
)

// RedisStore guarda cada documento em uma chave string (prefixo + nome).
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func NewRedisStoreFromConfig(cfg config.RedisConf) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStore(client, cfg.Prefix)
}

func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDocumentNotFound
	}
	return data, err
}

func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, s.prefix+name, data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
