package dao

import (
	"context"

	"gorm.io/gorm"

	"streamforge/ddd/infrastructure/database/po"
	"streamforge/pkg/logger"
)

// VideoDAO 视频数据访问对象
type VideoDAO struct {
	db *gorm.DB
}

// NewVideoDAO 创建视频DAO实例
func NewVideoDAO(db *gorm.DB) *VideoDAO {
	return &VideoDAO{db: db}
}

// Create 创建视频行
func (d *VideoDAO) Create(ctx context.Context, videoPo *po.VideoPO) error {
	if err := d.db.WithContext(ctx).Create(videoPo).Error; err != nil {
		logger.Errorf("create video row: %v", err)
		return err
	}
	return nil
}

// FindByID 按ID查询视频
func (d *VideoDAO) FindByID(ctx context.Context, videoID string) (*po.VideoPO, error) {
	var video po.VideoPO
	if err := d.db.WithContext(ctx).Where("id = ?", videoID).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// UpdateStatus 更新处理状态
func (d *VideoDAO) UpdateStatus(ctx context.Context, videoID, status string) error {
	if err := d.db.WithContext(ctx).Model(&po.VideoPO{}).
		Where("id = ?", videoID).
		Update("processing_status", status).Error; err != nil {
		logger.Errorf("update video status: %v", err)
		return err
	}
	return nil
}

// AddViews 播放计数累加
func (d *VideoDAO) AddViews(ctx context.Context, videoID string, delta int64) error {
	if err := d.db.WithContext(ctx).Model(&po.VideoPO{}).
		Where("id = ?", videoID).
		UpdateColumn("views", gorm.Expr("views + ?", delta)).Error; err != nil {
		logger.Errorf("add video views: %v", err)
		return err
	}
	return nil
}

// DeleteCascade 删除视频及其全部档位和切片，一个事务内完成
func (d *VideoDAO) DeleteCascade(ctx context.Context, videoID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var qualityIDs []string
		if err := tx.Model(&po.VideoQualityPO{}).
			Where("video_id = ?", videoID).
			Pluck("id", &qualityIDs).Error; err != nil {
			return err
		}
		if len(qualityIDs) > 0 {
			if err := tx.Where("video_quality_id IN ?", qualityIDs).
				Delete(&po.VideoSegmentPO{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("video_id = ?", videoID).Delete(&po.VideoQualityPO{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", videoID).Delete(&po.VideoPO{}).Error
	})
}

// InsertTier 档位行与它的全部切片行在一个事务内落库。
// 切片分批写入，避免单条INSERT超过包大小限制。
func (d *VideoDAO) InsertTier(ctx context.Context, qualityPo *po.VideoQualityPO, segmentPos []*po.VideoSegmentPO) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(qualityPo).Error; err != nil {
			return err
		}
		for _, seg := range segmentPos {
			if err := tx.Create(seg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryQualities 按档位优先级升序返回已提交档位
func (d *VideoDAO) QueryQualities(ctx context.Context, videoID string, order []string) ([]*po.VideoQualityPO, error) {
	var qualities []*po.VideoQualityPO
	if err := d.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Find(&qualities).Error; err != nil {
		logger.Errorf("query video qualities: %v", err)
		return nil, err
	}
	return sortQualities(qualities, order), nil
}

// FindQuality 查询某视频的指定档位
func (d *VideoDAO) FindQuality(ctx context.Context, videoID, quality string) (*po.VideoQualityPO, error) {
	var row po.VideoQualityPO
	if err := d.db.WithContext(ctx).
		Where("video_id = ? AND quality = ?", videoID, quality).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// QuerySegmentMetas 按切片索引升序返回某档位的切片元数据，不取二进制负载
func (d *VideoDAO) QuerySegmentMetas(ctx context.Context, videoQualityID string) ([]*po.VideoSegmentPO, error) {
	var segments []*po.VideoSegmentPO
	if err := d.db.WithContext(ctx).
		Select("id", "video_quality_id", "segment_index", "size", "start_time", "end_time", "created_at").
		Where("video_quality_id = ?", videoQualityID).
		Order("segment_index ASC").
		Find(&segments).Error; err != nil {
		logger.Errorf("query segment metas: %v", err)
		return nil, err
	}
	return segments, nil
}

// FindSegment 按索引取单个切片，含二进制负载
func (d *VideoDAO) FindSegment(ctx context.Context, videoQualityID string, index int) (*po.VideoSegmentPO, error) {
	var segment po.VideoSegmentPO
	if err := d.db.WithContext(ctx).
		Where("video_quality_id = ? AND segment_index = ?", videoQualityID, index).
		First(&segment).Error; err != nil {
		return nil, err
	}
	return &segment, nil
}

// sortQualities 按给定档位顺序重排查询结果
func sortQualities(rows []*po.VideoQualityPO, order []string) []*po.VideoQualityPO {
	if len(order) == 0 {
		return rows
	}
	rank := make(map[string]int, len(order))
	for i, q := range order {
		rank[q] = i
	}
	sorted := make([]*po.VideoQualityPO, 0, len(rows))
	for _, q := range order {
		for _, row := range rows {
			if row.Quality == q {
				sorted = append(sorted, row)
			}
		}
	}
	// 未知档位排在末尾，不丢行
	for _, row := range rows {
		if _, ok := rank[row.Quality]; !ok {
			sorted = append(sorted, row)
		}
	}
	return sorted
}
