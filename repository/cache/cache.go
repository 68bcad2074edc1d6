package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bagrental/model"

	"github.com/go-redis/redis/v8"
)

const (
	versionKey = "catalog:version"
	DefaultTTL = 60 * time.Second
)

// Catalog caches bag listings per (tier, status) filter. Invalidate bumps a
// version counter so stale keys simply age out.
type Catalog interface {
	Get(ctx context.Context, tier model.MembershipTier, status model.BagStatus) ([]model.Bag, bool, error)
	Set(ctx context.Context, tier model.MembershipTier, status model.BagStatus, bags []model.Bag) error
	Invalidate(ctx context.Context) error
}

type redisCatalog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCatalog{rdb: rdb, ttl: ttl}
}

// Connect parses a redis:// URL or a bare host:port.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *redisCatalog) key(ctx context.Context, tier model.MembershipTier, status model.BagStatus) (string, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("catalog:v%d:%s:%s", v, tierOrAll(tier), statusOrAll(status)), nil
}

func (c *redisCatalog) Get(ctx context.Context, tier model.MembershipTier, status model.BagStatus) ([]model.Bag, bool, error) {
	k, err := c.key(ctx, tier, status)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var bags []model.Bag
	if err := json.Unmarshal(raw, &bags); err != nil {
		return nil, false, err
	}
	return bags, true, nil
}

func (c *redisCatalog) Set(ctx context.Context, tier model.MembershipTier, status model.BagStatus, bags []model.Bag) error {
	k, err := c.key(ctx, tier, status)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(bags)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, k, raw, c.ttl).Err()
}

func (c *redisCatalog) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, versionKey).Err()
}

func tierOrAll(t model.MembershipTier) string {
	if t == "" {
		return "all"
	}
	return string(t)
}

func statusOrAll(s model.BagStatus) string {
	if s == "" {
		return "all"
	}
	return string(s)
}

type noop struct{}

// NewNoop is used when REDIS_URL is unset.
func NewNoop() Catalog { return noop{} }

func (noop) Get(context.Context, model.MembershipTier, model.BagStatus) ([]model.Bag, bool, error) {
	return nil, false, nil
}
func (noop) Set(context.Context, model.MembershipTier, model.BagStatus, []model.Bag) error { return nil }
func (noop) Invalidate(context.Context) error                                            { return nil }
