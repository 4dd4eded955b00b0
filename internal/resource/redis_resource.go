package resource

import (
	"fmt"
	"sync"

	"streamforge/pkg/config"
	"streamforge/pkg/logger"
	"streamforge/pkg/redisclient"
)

var (
	redisResourceOnce      sync.Once
	singletonRedisResource *RedisResource
)

// RedisResource Redis资源管理器
type RedisResource struct {
	client *redisclient.Client
}

// DefaultRedisResource 获取Redis资源单例
func DefaultRedisResource() *RedisResource {
	redisResourceOnce.Do(func() {
		singletonRedisResource = &RedisResource{}
	})
	return singletonRedisResource
}

// MustOpen 初始化Redis连接
func (r *RedisResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before RedisResource")
	}

	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		panic(fmt.Sprintf("failed to connect redis: %v", err))
	}
	r.client = client

	logger.Info("Redis resource initialized", map[string]interface{}{
		"addr": cfg.Redis.GetRedisAddr(),
		"db":   cfg.Redis.DB,
	})
}

// GetClient 获取Redis客户端
func (r *RedisResource) GetClient() *redisclient.Client {
	return r.client
}

// Close 释放资源
func (r *RedisResource) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}
