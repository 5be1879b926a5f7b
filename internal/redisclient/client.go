package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireFinalizeLock takes a short per-user lock so a retried webhook and a
// client-side confirmation cannot run finalize concurrently. The database
// unique constraint remains the backstop; the lock just avoids needless
// serialization failures.
func (c *Client) AcquireFinalizeLock(ctx context.Context, userID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:finalize:%d", userID), "1", ttl).Result()
}

// ReleaseFinalizeLock releases the per-user finalize lock
func (c *Client) ReleaseFinalizeLock(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:finalize:%d", userID)).Err()
}

// MarkUniqueView records a (template, viewer, day) triple; returns true the
// first time that viewer sees the template today, which drives the
// unique_views analytics counter.
func (c *Client) MarkUniqueView(ctx context.Context, templateID, viewerID int64, day time.Time) (bool, error) {
	key := fmt.Sprintf("views:%d:%s", templateID, day.Format("2006-01-02"))
	added, err := c.rdb.SAdd(ctx, key, viewerID).Result()
	if err != nil {
		return false, err
	}
	// Keep the dedup set around a little past the day it covers.
	c.rdb.Expire(ctx, key, 48*time.Hour)
	return added > 0, nil
}
