// Package cache keeps recently read balances in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/point-ledger/internal/models"
)

const keyPrefix = "point:balance:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type Balances struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewBalances(client redis.Cmdable, ttl time.Duration) *Balances {
	return &Balances{client: client, ttl: ttl}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Get returns the cached balance and whether it was present.
func (c *Balances) Get(ctx context.Context, userID int64) (models.Balance, bool, error) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Balance{}, false, nil
	}
	if err != nil {
		return models.Balance{}, false, fmt.Errorf("redis get: %w", err)
	}
	var b models.Balance
	if err := json.Unmarshal(raw, &b); err != nil {
		return models.Balance{}, false, fmt.Errorf("decode cached balance: %w", err)
	}
	return b, true, nil
}

func (c *Balances) Set(ctx context.Context, b models.Balance) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode balance: %w", err)
	}
	if err := c.client.Set(ctx, key(b.UserID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Balances) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
