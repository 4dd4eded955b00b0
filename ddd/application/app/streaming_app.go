package app

import (
	"context"
	"encoding/json"
	"sync"

	"streamforge/ddd/application/dto"
	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/repo"
	"streamforge/ddd/domain/service"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
	"streamforge/pkg/logger"
)

// segmentMimeType 切片响应的内容类型
const segmentMimeType = "video/mp4"

var (
	singleStreamingApp StreamingApp
	onceStreamingApp   sync.Once
)

// StreamingApp 播放侧应用服务
type StreamingApp interface {
	// GetManifest 生成播放清单，列出全部可用档位与切片索引
	GetManifest(ctx context.Context, videoID, requesterID string) (*dto.ManifestDto, error)

	// GetSegment 取切片数据，rangeHeader为空时返回完整负载
	GetSegment(ctx context.Context, videoID, requesterID string, quality vo.Quality, index int, rangeHeader string) (*dto.SegmentDataDto, error)

	// GetQualityInfo 取单个档位的详细信息
	GetQualityInfo(ctx context.Context, videoID, requesterID string, quality vo.Quality) (*dto.QualityInfoDto, error)

	// GetAutoQuality 根据带宽与UA从可用档位中自动选档
	GetAutoQuality(ctx context.Context, videoID, requesterID string, bandwidthKbps int, userAgent string) (*dto.AutoQualityDto, error)
}

type streamingAppImpl struct {
	videoRepo repo.VideoRepository
	cache     gateway.ManifestCache
}

var defaultStreamingAppFactory func() StreamingApp

// SetDefaultStreamingAppFactory 装配期注入默认实例的构造方式
func SetDefaultStreamingAppFactory(f func() StreamingApp) {
	defaultStreamingAppFactory = f
}

// DefaultStreamingApp 获取播放应用服务单例
func DefaultStreamingApp() StreamingApp {
	onceStreamingApp.Do(func() {
		if defaultStreamingAppFactory == nil {
			panic("streaming app factory not configured")
		}
		singleStreamingApp = defaultStreamingAppFactory()
	})
	return singleStreamingApp
}

// NewStreamingAppWith 显式依赖装配
func NewStreamingAppWith(videoRepo repo.VideoRepository, cache gateway.ManifestCache) StreamingApp {
	return &streamingAppImpl{videoRepo: videoRepo, cache: cache}
}

// GetManifest 生成播放清单
func (a *streamingAppImpl) GetManifest(ctx context.Context, videoID, requesterID string) (*dto.ManifestDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}

	// 缓存命中直接返回，可见性已在上面重新校验过
	if cached, ok := a.cache.GetManifest(ctx, videoID); ok {
		var manifest dto.ManifestDto
		if err := json.Unmarshal(cached, &manifest); err == nil {
			return &manifest, nil
		}
		a.cache.InvalidateManifest(ctx, videoID)
	}

	qualities, err := a.videoRepo.ListQualities(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(qualities) == 0 {
		return nil, errno.ErrNoQualities
	}

	manifest := &dto.ManifestDto{
		VideoID:         videoID,
		Title:           video.Title,
		Duration:        video.Duration,
		SegmentDuration: vo.SegmentDuration,
		Qualities:       make([]dto.ManifestQualityDto, 0, len(qualities)),
	}
	for _, q := range qualities {
		metas, err := a.videoRepo.ListSegmentMetas(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		segments := make([]dto.ManifestSegmentDto, 0, len(metas))
		for _, meta := range metas {
			segments = append(segments, dto.NewManifestSegmentDto(videoID, q.Quality.String(), meta))
		}
		manifest.Qualities = append(manifest.Qualities, dto.ManifestQualityDto{
			Quality:       q.Quality.String(),
			Resolution:    q.Resolution,
			BitrateK:      q.BitrateK,
			Codec:         q.Codec,
			FPS:           q.FPS,
			TotalSegments: q.TotalSegments,
			TotalSize:     q.TotalSize,
			Segments:      segments,
		})
	}

	if payload, err := json.Marshal(manifest); err == nil {
		a.cache.SetManifest(ctx, videoID, payload)
	}
	return manifest, nil
}

// GetSegment 取切片数据并做字节区间裁剪
func (a *streamingAppImpl) GetSegment(ctx context.Context, videoID, requesterID string, quality vo.Quality, index int, rangeHeader string) (*dto.SegmentDataDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}
	if !quality.IsValid() {
		return nil, errno.ErrQualityNotFound
	}

	segment, err := a.videoRepo.GetSegment(ctx, videoID, quality, index)
	if err != nil {
		return nil, err
	}

	size := int64(len(segment.Data))
	byteRange, err := service.ParseRange(rangeHeader, size)
	if err != nil {
		// 416响应需要资源总大小，随错误一并带回
		return &dto.SegmentDataDto{TotalSize: size}, err
	}
	if byteRange == nil {
		return &dto.SegmentDataDto{
			Data:      segment.Data,
			TotalSize: size,
			MimeType:  segmentMimeType,
		}, nil
	}
	return &dto.SegmentDataDto{
		Data:       segment.Data[byteRange.Start : byteRange.End+1],
		TotalSize:  size,
		MimeType:   segmentMimeType,
		Partial:    true,
		RangeStart: byteRange.Start,
		RangeEnd:   byteRange.End,
	}, nil
}

// GetQualityInfo 取单个档位的详细信息
func (a *streamingAppImpl) GetQualityInfo(ctx context.Context, videoID, requesterID string, quality vo.Quality) (*dto.QualityInfoDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}

	qualities, err := a.videoRepo.ListQualities(ctx, videoID)
	if err != nil {
		return nil, err
	}
	for _, q := range qualities {
		if q.Quality == quality {
			return dto.NewQualityInfoDto(q), nil
		}
	}
	return nil, errno.ErrQualityNotFound
}

// GetAutoQuality 自动选档
func (a *streamingAppImpl) GetAutoQuality(ctx context.Context, videoID, requesterID string, bandwidthKbps int, userAgent string) (*dto.AutoQualityDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}

	rows, err := a.videoRepo.ListQualities(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errno.ErrNoQualities
	}

	available := make([]vo.Quality, 0, len(rows))
	availableNames := make([]string, 0, len(rows))
	for _, row := range rows {
		available = append(available, row.Quality)
		availableNames = append(availableNames, row.Quality.String())
	}

	selected := service.DetectOptimalQuality(available, bandwidthKbps, userAgent)
	logger.Debugf("auto quality video_id=%s bandwidth=%d selected=%s", videoID, bandwidthKbps, selected)

	return &dto.AutoQualityDto{
		VideoID:            videoID,
		SelectedQuality:    selected.String(),
		AvailableQualities: availableNames,
		BandwidthKbps:      bandwidthKbps,
		Mobile:             service.IsMobileUserAgent(userAgent),
	}, nil
}
