package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/repo"
	"streamforge/ddd/domain/vo"
	"streamforge/ddd/infrastructure/database/convertor"
	"streamforge/ddd/infrastructure/database/dao"
	"streamforge/ddd/infrastructure/database/po"
	"streamforge/pkg/errno"
)

// videoRepositoryImpl 视频仓储实现
type videoRepositoryImpl struct {
	videoDao  *dao.VideoDAO
	convertor *convertor.VideoConvertor
}

// NewVideoRepository 创建视频仓储实现
func NewVideoRepository(db *gorm.DB) repo.VideoRepository {
	return &videoRepositoryImpl{
		videoDao:  dao.NewVideoDAO(db),
		convertor: convertor.NewVideoConvertor(),
	}
}

// CreateVideo 创建视频行
func (r *videoRepositoryImpl) CreateVideo(ctx context.Context, video *entity.Video) error {
	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now
	return r.videoDao.Create(ctx, r.convertor.ToVideoPO(video))
}

// GetVideo 按ID查询视频
func (r *videoRepositoryImpl) GetVideo(ctx context.Context, videoID string) (*entity.Video, error) {
	row, err := r.videoDao.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrVideoNotFound
		}
		return nil, err
	}
	return r.convertor.ToVideoEntity(row), nil
}

// UpdateProcessingStatus 更新处理状态，非法状态转换直接拒绝
func (r *videoRepositoryImpl) UpdateProcessingStatus(ctx context.Context, videoID string, status vo.ProcessingStatus) error {
	current, err := r.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if !current.ProcessingStatus.CanTransitionTo(status) {
		return errno.ErrInvalidParam
	}
	return r.videoDao.UpdateStatus(ctx, videoID, status.String())
}

// AddViews 播放计数累加
func (r *videoRepositoryImpl) AddViews(ctx context.Context, videoID string, delta int64) error {
	return r.videoDao.AddViews(ctx, videoID, delta)
}

// DeleteVideo 删除视频及其全部档位和切片
func (r *videoRepositoryImpl) DeleteVideo(ctx context.Context, videoID string) error {
	return r.videoDao.DeleteCascade(ctx, videoID)
}

// CommitTier 单个档位的原子提交
func (r *videoRepositoryImpl) CommitTier(ctx context.Context, quality *entity.VideoQuality, segments []*entity.VideoSegment) error {
	now := time.Now()
	quality.CreatedAt = now
	quality.UpdatedAt = now

	qualityPo := r.convertor.ToQualityPO(quality)
	segmentPos := make([]*po.VideoSegmentPO, 0, len(segments))
	for _, seg := range segments {
		seg.CreatedAt = now
		segmentPos = append(segmentPos, r.convertor.ToSegmentPO(seg))
	}
	return r.videoDao.InsertTier(ctx, qualityPo, segmentPos)
}

// ListQualities 按档位优先级升序返回已提交档位
func (r *videoRepositoryImpl) ListQualities(ctx context.Context, videoID string) ([]*entity.VideoQuality, error) {
	order := make([]string, 0, len(vo.QualityLadder))
	for _, q := range vo.QualityLadder {
		order = append(order, q.String())
	}
	rows, err := r.videoDao.QueryQualities(ctx, videoID, order)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToQualityEntities(rows), nil
}

// ListSegmentMetas 返回某档位的切片元数据
func (r *videoRepositoryImpl) ListSegmentMetas(ctx context.Context, videoQualityID string) ([]*entity.VideoSegment, error) {
	rows, err := r.videoDao.QuerySegmentMetas(ctx, videoQualityID)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToSegmentEntities(rows), nil
}

// GetSegment 取某视频某档位的指定切片
func (r *videoRepositoryImpl) GetSegment(ctx context.Context, videoID string, quality vo.Quality, index int) (*entity.VideoSegment, error) {
	qualityRow, err := r.videoDao.FindQuality(ctx, videoID, quality.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrQualityNotFound
		}
		return nil, err
	}
	segmentRow, err := r.videoDao.FindSegment(ctx, qualityRow.ID, index)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrSegmentNotFound
		}
		return nil, err
	}
	return r.convertor.ToSegmentEntity(segmentRow), nil
}
