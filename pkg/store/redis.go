package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/tilegrid/pkg/project"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each project under "<prefix>project:<name>" and tracks
// the names in the set "<prefix>projects".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := retry(ctx, connectAttempts, connectDelay, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return &retryableError{err}
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) key(name string) string { return s.prefix + "project:" + name }
func (s *RedisStore) index() string          { return s.prefix + "projects" }

// Get returns the named project.
func (s *RedisStore) Get(ctx context.Context, name string) (*project.Project, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(data)
}

// Put writes the project and its index entry in one transaction.
func (s *RedisStore) Put(ctx context.Context, p *project.Project) error {
	data, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(p.Name), data, 0)
		pipe.SAdd(ctx, s.index(), p.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Delete removes the project and its index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.index(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the indexed project names in ascending order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
