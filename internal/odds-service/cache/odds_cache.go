package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda no Redis o resultado bruto do motor por estágio
// (jogadores + hole cards + board), com TTL fixo.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyStage(stage string) string { return "odds:calc:" + stage }

func (c *Cache) Get(ctx context.Context, stage string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyStage(stage)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) Set(ctx context.Context, stage string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyStage(stage), b, c.TTL).Err()
}
