// internal/store/offers_redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

const offerKeyPrefix = "offers:"

// RedisOfferCache stores the formatted offer list as a single JSON blob
// with a TTL, so selections against stale results expire on their own.
type RedisOfferCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOfferCache(client *redis.Client, ttl time.Duration) *RedisOfferCache {
	return &RedisOfferCache{client: client, ttl: ttl}
}

func (c *RedisOfferCache) Get(ctx context.Context, threadID string) ([]models.Offer, error) {
	raw, err := c.client.Get(ctx, offerKeyPrefix+threadID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached offers: %w", err)
	}
	var offers []models.Offer
	if err := json.Unmarshal(raw, &offers); err != nil {
		return nil, fmt.Errorf("decode cached offers: %w", err)
	}
	return offers, nil
}

func (c *RedisOfferCache) Set(ctx context.Context, threadID string, offers []models.Offer) error {
	raw, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("encode offers: %w", err)
	}
	if err := c.client.Set(ctx, offerKeyPrefix+threadID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached offers: %w", err)
	}
	return nil
}

func (c *RedisOfferCache) Clear(ctx context.Context, threadID string) error {
	if err := c.client.Del(ctx, offerKeyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("clear cached offers: %w", err)
	}
	return nil
}
