package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowgraph-dev/flowgraph/store"
)

// RedisCheckpointStore implements store.CheckpointStore using Redis
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "flowgraph:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
}

// NewRedisCheckpointStore creates a new Redis checkpoint store
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return NewRedisCheckpointStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisCheckpointStoreWithClient wraps an existing Redis client
func NewRedisCheckpointStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCheckpointStore {
	if prefix == "" {
		prefix = "flowgraph:"
	}

	return &RedisCheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Close closes the underlying Redis client
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, id)
}

func (s *RedisCheckpointStore) threadKey(id string) string {
	return fmt.Sprintf("%sthread:%s:checkpoints", s.prefix, id)
}

// Save stores a checkpoint. The thread index is a sorted set scored by
// version so List returns checkpoints in commit order.
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	key := s.checkpointKey(checkpoint.ID)
	pipe := s.client.Pipeline()

	pipe.Set(ctx, key, data, s.ttl)

	if checkpoint.ThreadID != "" {
		threadKey := s.threadKey(checkpoint.ThreadID)
		pipe.ZAdd(ctx, threadKey, redis.Z{Score: float64(checkpoint.Version), Member: checkpoint.ID})
		if s.ttl > 0 {
			pipe.Expire(ctx, threadKey, s.ttl)
		}
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}

	return nil
}

// Load retrieves a checkpoint by ID
func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	key := s.checkpointKey(checkpointID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	return &checkpoint, nil
}

// List returns all checkpoints for a thread, ordered by ascending version
func (s *RedisCheckpointStore) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	threadKey := s.threadKey(threadID)
	checkpointIDs, err := s.client.ZRange(ctx, threadKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for thread %s: %w", threadID, err)
	}

	if len(checkpointIDs) == 0 {
		return []*store.Checkpoint{}, nil
	}

	keys := make([]string, 0, len(checkpointIDs))
	for _, id := range checkpointIDs {
		keys = append(keys, s.checkpointKey(id))
	}

	// MGet returns nil for missing (expired) keys, which we skip.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoints: %w", err)
	}

	var checkpoints []*store.Checkpoint
	for _, result := range results {
		if result == nil {
			continue
		}

		strData, ok := result.(string)
		if !ok {
			continue
		}

		var checkpoint store.Checkpoint
		if err := json.Unmarshal([]byte(strData), &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &checkpoint)
	}

	return checkpoints, nil
}

// Delete removes a checkpoint
func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	checkpoint, err := s.Load(ctx, checkpointID)
	if err != nil {
		return err
	}

	key := s.checkpointKey(checkpointID)
	pipe := s.client.Pipeline()

	pipe.Del(ctx, key)

	if checkpoint.ThreadID != "" {
		pipe.ZRem(ctx, s.threadKey(checkpoint.ThreadID), checkpointID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	return nil
}

// Clear removes all checkpoints for a thread
func (s *RedisCheckpointStore) Clear(ctx context.Context, threadID string) error {
	threadKey := s.threadKey(threadID)
	checkpointIDs, err := s.client.ZRange(ctx, threadKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get checkpoints for clearing: %w", err)
	}

	if len(checkpointIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()

	for _, id := range checkpointIDs {
		pipe.Del(ctx, s.checkpointKey(id))
	}

	pipe.Del(ctx, threadKey)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}

	return nil
}
