// Package views 文章阅读量计数
package views

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	ModeDirect   = "direct"
	ModeBuffered = "buffered"

	FlushJobName = "flush_views"
)

// Counter 每次阅读调用一次 Hit
type Counter interface {
	Hit(ctx context.Context, articleID uint64) error
}

// Store 阅读量落库
type Store interface {
	IncrementViews(ctx context.Context, id uint64) error
	AddViews(ctx context.Context, id uint64, n int64) error
}

// HashStore *redis.Client 的子集
type HashStore interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.StringStringMapCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Rename(ctx context.Context, key, newkey string) *redis.StatusCmd
}

// DirectCounter 每次阅读直接 UPDATE views = views + 1
type DirectCounter struct {
	store Store
}

func NewDirectCounter(s Store) *DirectCounter {
	return &DirectCounter{store: s}
}

func (c *DirectCounter) Hit(ctx context.Context, articleID uint64) error {
	return c.store.IncrementViews(ctx, articleID)
}

// BufferedCounter 阅读量先累加在 redis hash 中，由 FlushTask 定时落库
type BufferedCounter struct {
	rdb HashStore
	key string
}

func NewBufferedCounter(rdb HashStore, key string) *BufferedCounter {
	return &BufferedCounter{rdb: rdb, key: key}
}

func (c *BufferedCounter) Hit(ctx context.Context, articleID uint64) error {
	return c.rdb.HIncrBy(ctx, c.key, strconv.FormatUint(articleID, 10), 1).Err()
}
