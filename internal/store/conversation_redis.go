// internal/store/conversation_redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisConversationStore keeps each thread as a Redis list of JSON messages,
// so insertion order is the list order.
type RedisConversationStore struct {
	client *redis.Client
}

func NewRedisConversationStore(client *redis.Client) *RedisConversationStore {
	return &RedisConversationStore{client: client}
}

func conversationKey(threadID string) string {
	return "conversation:" + threadID
}

func (s *RedisConversationStore) Get(ctx context.Context, threadID string) ([]models.Message, error) {
	raw, err := s.client.LRange(ctx, conversationKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	out := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// A corrupt entry should not poison the thread.
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisConversationStore) Append(ctx context.Context, threadID string, msg models.Message) error {
	key := conversationKey(threadID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if exists == 0 {
		seed, _ := json.Marshal(models.Message{
			Role:      "system",
			Content:   models.SystemPrompt,
			Timestamp: time.Now(),
		})
		if err := s.client.RPush(ctx, key, seed).Err(); err != nil {
			return fmt.Errorf("redis rpush seed: %w", err)
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	payload, _ := json.Marshal(msg)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	return nil
}

func (s *RedisConversationStore) Clear(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, conversationKey(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
