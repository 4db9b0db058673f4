package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blog-platform/internal/models"
	"blog-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisMessageStore keeps each room's messages in a sorted set scored by
// sent time. Retention is enforced by the store itself: writes re-arm a key
// TTL and reads purge entries older than the retention window, so messages
// disappear without the chat layer being told.
type RedisMessageStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisMessageStore(redisURL string, retention time.Duration) (*RedisMessageStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Connected to redis successfully")
	return &RedisMessageStore{client: client, retention: retention}, nil
}

func (s *RedisMessageStore) Close() error {
	return s.client.Close()
}

func roomKey(room string) string {
	return "chat:room:" + room
}

func (s *RedisMessageStore) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := roomKey(msg.Room)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(msg.Sent.UnixMilli()), Member: string(data)})
	pipe.Expire(ctx, key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *RedisMessageStore) RecentMessages(ctx context.Context, room string, limit int) ([]*models.ChatMessage, error) {
	key := roomKey(room)
	cutoff := time.Now().Add(-s.retention).UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%d", cutoff))
	rangeCmd := pipe.ZRange(ctx, key, int64(-limit), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	raw := rangeCmd.Val()
	messages := make([]*models.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		msg := &models.ChatMessage{}
		if err := json.Unmarshal([]byte(entry), msg); err != nil {
			logger.Warn("Skipping undecodable message in room %q: %v", room, err)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
