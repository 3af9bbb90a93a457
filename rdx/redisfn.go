// Package rdx owns the Redis connection used for payment locks and caches.
package rdx

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect dials Redis at addr and pings it. An empty addr means Redis is
// disabled and returns a nil client.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		log.Println("Redis address not set, payment intent cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot ping Redis at %s: %w", addr, err)
	}
	log.Printf("Connected to Redis at %s", addr)
	return client, nil
}
