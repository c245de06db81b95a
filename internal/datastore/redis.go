package datastore

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set holding saved book ids.
const DefaultRedisKey = "bookfinder:saved_book_ids"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps saved ids in a Redis set so several machines can share them.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store for opts. Call Connect before use.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreWithClient(client, opts.Key)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Connect checks that the server answers.
func (s *RedisStore) Connect(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// LoadSavedIDs returns the members of the set, sorted.
func (s *RedisStore) LoadSavedIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read saved ids: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// PersistSavedIDs replaces the set atomically.
func (s *RedisStore) PersistSavedIDs(ctx context.Context, ids []string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(ids) > 0 {
			members := make([]any, len(ids))
			for i, id := range ids {
				members[i] = id
			}
			pipe.SAdd(ctx, s.key, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist saved ids: %w", err)
	}
	return nil
}

// ClearSavedIDs deletes the set.
func (s *RedisStore) ClearSavedIDs(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear saved ids: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
