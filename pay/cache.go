package pay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedIntent is what a repeated intent request for the same order gets back.
type CachedIntent struct {
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// IntentCache serialises intent creation per order and remembers the result.
type IntentCache interface {
	Lock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, orderID string)
	Get(ctx context.Context, orderID string) (*CachedIntent, error)
	Put(ctx context.Context, orderID string, c CachedIntent, ttl time.Duration) error
	Forget(ctx context.Context, orderID string)
}

type RedisIntentCache struct {
	conn *redis.Client
}

func NewRedisIntentCache(conn *redis.Client) *RedisIntentCache {
	return &RedisIntentCache{conn: conn}
}

func lockKey(orderID string) string   { return "intent_lock:" + orderID }
func intentKey(orderID string) string { return "intent:" + orderID }

func (c *RedisIntentCache) Lock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	return c.conn.SetNX(ctx, lockKey(orderID), "1", ttl).Result()
}

func (c *RedisIntentCache) Unlock(ctx context.Context, orderID string) {
	if err := c.conn.Del(ctx, lockKey(orderID)).Err(); err != nil {
		log.Printf("Unlock: failed for order %s, err=%v", orderID, err)
	}
}

func (c *RedisIntentCache) Get(ctx context.Context, orderID string) (*CachedIntent, error) {
	raw, err := c.conn.Get(ctx, intentKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ci CachedIntent
	if err := json.Unmarshal(raw, &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

func (c *RedisIntentCache) Put(ctx context.Context, orderID string, ci CachedIntent, ttl time.Duration) error {
	raw, err := json.Marshal(ci)
	if err != nil {
		return err
	}
	return c.conn.Set(ctx, intentKey(orderID), raw, ttl).Err()
}

func (c *RedisIntentCache) Forget(ctx context.Context, orderID string) {
	if err := c.conn.Del(ctx, intentKey(orderID)).Err(); err != nil {
		log.Printf("Forget: failed for order %s, err=%v", orderID, err)
	}
}

// NopCache is used when Redis is not configured. Locks always succeed.
type NopCache struct{}

func (NopCache) Lock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopCache) Unlock(context.Context, string)                            {}
func (NopCache) Get(context.Context, string) (*CachedIntent, error)        { return nil, nil }
func (NopCache) Put(context.Context, string, CachedIntent, time.Duration) error {
	return nil
}
func (NopCache) Forget(context.Context, string) {}
