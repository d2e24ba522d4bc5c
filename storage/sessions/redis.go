// Package sessions stores per-login session flags in Redis.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/desiigner101/stunotes/core"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ core.SessionStore = (*redisStore)(nil)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) core.SessionStore {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

func (s *redisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID, key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "getting session key")
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, sessionID, key, value string) error {
	if err := s.client.Set(ctx, sessionKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "setting session key")
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID, key)).Err(); err != nil {
		return errors.Wrap(err, "deleting session key")
	}
	return nil
}
