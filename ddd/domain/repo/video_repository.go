package repo

import (
	"context"

	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/vo"
)

// VideoRepository 视频聚合的持久化接口。
// Video 拥有 VideoQuality，VideoQuality 拥有 VideoSegment，删除自顶向下级联。
type VideoRepository interface {
	// CreateVideo 创建视频行（含缩略图），状态必须是processing
	CreateVideo(ctx context.Context, video *entity.Video) error

	// GetVideo 按ID查询视频（不含档位和切片）
	GetVideo(ctx context.Context, videoID string) (*entity.Video, error)

	// UpdateProcessingStatus 更新处理状态，只允许 processing -> completed/failed
	UpdateProcessingStatus(ctx context.Context, videoID string, status vo.ProcessingStatus) error

	// AddViews 播放计数累加
	AddViews(ctx context.Context, videoID string, delta int64) error

	// DeleteVideo 删除视频及其全部档位和切片
	DeleteVideo(ctx context.Context, videoID string) error

	// CommitTier 单个档位的原子提交：档位行和它的全部切片行在一个事务内落库。
	// 不同档位的提交相互独立，先成功的档位不受后续档位失败影响。
	CommitTier(ctx context.Context, quality *entity.VideoQuality, segments []*entity.VideoSegment) error

	// ListQualities 按档位优先级升序（低清晰度在前）返回已提交档位
	ListQualities(ctx context.Context, videoID string) ([]*entity.VideoQuality, error)

	// ListSegmentMetas 按切片索引升序返回某档位的切片元数据（不含二进制负载）
	ListSegmentMetas(ctx context.Context, videoQualityID string) ([]*entity.VideoSegment, error)

	// GetSegment 取某视频某档位的指定切片（含二进制负载）
	GetSegment(ctx context.Context, videoID string, quality vo.Quality, index int) (*entity.VideoSegment, error)
}
