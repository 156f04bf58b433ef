package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobrank/internal/model"
)

const defaultSeenPrefix = "jobrank:seen:"

// RedisSeenStore keeps seen identities as redis keys. Retention is enforced by
// key TTL rather than Cleanup.
type RedisSeenStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisSeenStore returns a seen-set on client. A zero retention keeps keys forever.
func NewRedisSeenStore(client *redis.Client, prefix string, retention time.Duration) *RedisSeenStore {
	if prefix == "" {
		prefix = defaultSeenPrefix
	}
	return &RedisSeenStore{client: client, prefix: prefix, retention: retention}
}

func (s *RedisSeenStore) key(id string) string { return s.prefix + id }

// IsSeen reports whether id has a live key.
func (s *RedisSeenStore) IsSeen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", id, err)
	}
	return n > 0, nil
}

// MarkSeen sets the key only if absent, so the first-seen metadata and TTL are kept.
func (s *RedisSeenStore) MarkSeen(ctx context.Context, id string, meta model.SeenMeta) error {
	payload, err := json.Marshal(struct {
		model.SeenMeta
		FirstSeen time.Time `json:"first_seen"`
	}{meta, time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding seen metadata for %s: %w", id, err)
	}
	if err := s.client.SetNX(ctx, s.key(id), payload, s.retention).Err(); err != nil {
		return fmt.Errorf("marking job %s as seen: %w", id, err)
	}
	return nil
}

// Reset deletes every key under the prefix.
func (s *RedisSeenStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("resetting seen jobs: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("resetting seen jobs: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("resetting seen jobs: %w", err)
		}
	}
	return nil
}

// Cleanup is a no-op; keys expire on their own.
func (s *RedisSeenStore) Cleanup(context.Context, time.Duration) error { return nil }
