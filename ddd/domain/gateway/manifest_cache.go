package gateway

import "context"

// ManifestCache 清单缓存与播放计数。缓存未命中或不可用时直接回源数据库。
type ManifestCache interface {
	GetManifest(ctx context.Context, videoID string) ([]byte, bool)
	SetManifest(ctx context.Context, videoID string, manifest []byte)
	InvalidateManifest(ctx context.Context, videoID string)

	// IncrementViews 播放计数自增，返回增量后的计数
	IncrementViews(ctx context.Context, videoID string) (int64, error)
	ResetViews(ctx context.Context, videoID string)
}
