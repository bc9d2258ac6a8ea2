package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// NewRedis 创建Redis客户端并用Ping测试连接。连接失败时客户端会被关闭。
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到Redis %s: %w", cfg.Address, err)
	}
	return rdb, nil
}
