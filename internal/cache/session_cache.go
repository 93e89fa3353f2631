package cache

import (
	"codelive/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCache is the Redis hot path for session metadata: join-code
// existence checks during code generation, the ended-session fast path on
// join, and status write-through when a session is ended or swept.
type SessionCache interface {
	SetMeta(ctx context.Context, code string, meta *model.SessionMeta) error
	GetMeta(ctx context.Context, code string) (*model.SessionMeta, error)
	SetInactive(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour, // matches the session expiry window
	}
}

func (c *sessionCache) key(code string) string {
	return fmt.Sprintf("session:%s", code)
}

func (c *sessionCache) SetMeta(ctx context.Context, code string, meta *model.SessionMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(code), data, c.ttl).Err()
}

func (c *sessionCache) GetMeta(ctx context.Context, code string) (*model.SessionMeta, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.SessionMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *sessionCache) SetInactive(ctx context.Context, code string) error {
	meta, err := c.GetMeta(ctx, code)
	if err != nil {
		return err
	}
	if meta == nil {
		return nil // cache miss, nothing to update
	}
	meta.IsActive = false
	return c.SetMeta(ctx, code, meta)
}

func (c *sessionCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}
