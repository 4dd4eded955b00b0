package cache

import (
	"context"
	"fmt"
	"time"

	"streamforge/ddd/domain/gateway"
	"streamforge/pkg/logger"
	"streamforge/pkg/redisclient"
)

// manifestTTL 清单缓存过期时间，管线提交新档位时会主动失效
const manifestTTL = 10 * time.Minute

// RedisCache 清单缓存和播放计数的Redis实现。
// Redis不可用时全部操作降级为未命中/空操作，读路径直接回源数据库。
type RedisCache struct {
	client *redisclient.Client
}

var _ gateway.ManifestCache = (*RedisCache)(nil)

// NewRedisCache 创建Redis缓存实例
func NewRedisCache(client *redisclient.Client) *RedisCache {
	return &RedisCache{client: client}
}

func manifestKey(videoID string) string {
	return fmt.Sprintf("streamforge:manifest:%s", videoID)
}

func viewsKey(videoID string) string {
	return fmt.Sprintf("streamforge:views:%s", videoID)
}

// GetManifest 读清单缓存
func (c *RedisCache) GetManifest(ctx context.Context, videoID string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Raw().Get(ctx, manifestKey(videoID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetManifest 写清单缓存
func (c *RedisCache) SetManifest(ctx context.Context, videoID string, manifest []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Raw().Set(ctx, manifestKey(videoID), manifest, manifestTTL).Err(); err != nil {
		logger.Debugf("set manifest cache for %s: %v", videoID, err)
	}
}

// InvalidateManifest 失效清单缓存
func (c *RedisCache) InvalidateManifest(ctx context.Context, videoID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Raw().Del(ctx, manifestKey(videoID)).Err(); err != nil {
		logger.Debugf("invalidate manifest cache for %s: %v", videoID, err)
	}
}

// IncrementViews 播放计数自增，返回增量后的计数
func (c *RedisCache) IncrementViews(ctx context.Context, videoID string) (int64, error) {
	if c.client == nil {
		return 0, fmt.Errorf("redis client not available")
	}
	return c.client.Raw().Incr(ctx, viewsKey(videoID)).Result()
}

// ResetViews 删除播放计数器，随视频删除一并清理
func (c *RedisCache) ResetViews(ctx context.Context, videoID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Raw().Del(ctx, viewsKey(videoID)).Err(); err != nil {
		logger.Debugf("reset views counter for %s: %v", videoID, err)
	}
}

// NoopCache Redis未启用时的空实现，所有读操作未命中
type NoopCache struct{}

var _ gateway.ManifestCache = (*NoopCache)(nil)

func (NoopCache) GetManifest(ctx context.Context, videoID string) ([]byte, bool) { return nil, false }
func (NoopCache) SetManifest(ctx context.Context, videoID string, manifest []byte) {}
func (NoopCache) InvalidateManifest(ctx context.Context, videoID string)           {}
func (NoopCache) IncrementViews(ctx context.Context, videoID string) (int64, error) {
	return 0, fmt.Errorf("view counter not available")
}
func (NoopCache) ResetViews(ctx context.Context, videoID string) {}
