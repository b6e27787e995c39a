package db

import (
	"context"
	"fmt"
	"time"

	"github.com/iceymoss/go-press/internal/conf"

	"github.com/go-redis/redis/v8"
)

// NewRedis 创建 redis 客户端并 ping 一次
func NewRedis(ctx context.Context, c conf.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rdb.Options().Addr, err)
	}
	return rdb, nil
}
