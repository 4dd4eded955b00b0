package convertor

import (
	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/vo"
	"streamforge/ddd/infrastructure/database/po"
)

// VideoConvertor 视频聚合的PO/Entity转换器
type VideoConvertor struct{}

// NewVideoConvertor 创建视频转换器
func NewVideoConvertor() *VideoConvertor {
	return &VideoConvertor{}
}

// ToVideoEntity 将PO转换为Entity
func (c *VideoConvertor) ToVideoEntity(row *po.VideoPO) *entity.Video {
	if row == nil {
		return nil
	}
	status := vo.ProcessingStatus(row.ProcessingStatus)
	if !status.IsValid() {
		status = vo.StatusFailed
	}
	return &entity.Video{
		ID:                 row.ID,
		UserID:             row.UserID,
		Title:              row.Title,
		Description:        row.Description,
		Category:           row.Category,
		Tags:               []string(row.Tags),
		IsPublic:           row.IsPublic,
		ProcessingStatus:   status,
		OriginalFilename:   row.OriginalFilename,
		Duration:           row.Duration,
		OriginalResolution: row.OriginalResolution,
		OriginalSize:       row.OriginalSize,
		FPS:                row.FPS,
		ThumbnailSmall:     row.ThumbnailSmall,
		ThumbnailMedium:    row.ThumbnailMedium,
		ThumbnailLarge:     row.ThumbnailLarge,
		ThumbnailMimeType:  row.ThumbnailMimeType,
		Views:              row.Views,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// ToVideoPO 将Entity转换为PO
func (c *VideoConvertor) ToVideoPO(video *entity.Video) *po.VideoPO {
	if video == nil {
		return nil
	}
	return &po.VideoPO{
		ID:                 video.ID,
		UserID:             video.UserID,
		Title:              video.Title,
		Description:        video.Description,
		Category:           video.Category,
		Tags:               po.StringList(video.Tags),
		IsPublic:           video.IsPublic,
		ProcessingStatus:   video.ProcessingStatus.String(),
		OriginalFilename:   video.OriginalFilename,
		Duration:           video.Duration,
		OriginalResolution: video.OriginalResolution,
		OriginalSize:       video.OriginalSize,
		FPS:                video.FPS,
		ThumbnailSmall:     video.ThumbnailSmall,
		ThumbnailMedium:    video.ThumbnailMedium,
		ThumbnailLarge:     video.ThumbnailLarge,
		ThumbnailMimeType:  video.ThumbnailMimeType,
		Views:              video.Views,
		CreatedAt:          video.CreatedAt,
		UpdatedAt:          video.UpdatedAt,
	}
}

// ToQualityEntity 将档位PO转换为Entity
func (c *VideoConvertor) ToQualityEntity(row *po.VideoQualityPO) *entity.VideoQuality {
	if row == nil {
		return nil
	}
	return &entity.VideoQuality{
		ID:              row.ID,
		VideoID:         row.VideoID,
		Quality:         vo.Quality(row.Quality),
		Resolution:      row.Resolution,
		BitrateK:        row.BitrateK,
		Codec:           row.Codec,
		FPS:             row.FPS,
		SegmentDuration: row.SegmentDuration,
		TotalSegments:   row.TotalSegments,
		TotalSize:       row.TotalSize,
		Status:          vo.ProcessingStatus(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// ToQualityPO 将档位Entity转换为PO
func (c *VideoConvertor) ToQualityPO(quality *entity.VideoQuality) *po.VideoQualityPO {
	if quality == nil {
		return nil
	}
	return &po.VideoQualityPO{
		ID:              quality.ID,
		VideoID:         quality.VideoID,
		Quality:         quality.Quality.String(),
		Resolution:      quality.Resolution,
		BitrateK:        quality.BitrateK,
		Codec:           quality.Codec,
		FPS:             quality.FPS,
		SegmentDuration: quality.SegmentDuration,
		TotalSegments:   quality.TotalSegments,
		TotalSize:       quality.TotalSize,
		Status:          quality.Status.String(),
		CreatedAt:       quality.CreatedAt,
		UpdatedAt:       quality.UpdatedAt,
	}
}

// ToQualityEntities 批量将档位PO转换为Entity
func (c *VideoConvertor) ToQualityEntities(rows []*po.VideoQualityPO) []*entity.VideoQuality {
	if rows == nil {
		return nil
	}
	entities := make([]*entity.VideoQuality, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			entities = append(entities, c.ToQualityEntity(row))
		}
	}
	return entities
}

// ToSegmentEntity 将切片PO转换为Entity
func (c *VideoConvertor) ToSegmentEntity(row *po.VideoSegmentPO) *entity.VideoSegment {
	if row == nil {
		return nil
	}
	return &entity.VideoSegment{
		ID:             row.ID,
		VideoQualityID: row.VideoQualityID,
		SegmentIndex:   row.SegmentIndex,
		Data:           row.Data,
		Size:           row.Size,
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		CreatedAt:      row.CreatedAt,
	}
}

// ToSegmentPO 将切片Entity转换为PO
func (c *VideoConvertor) ToSegmentPO(segment *entity.VideoSegment) *po.VideoSegmentPO {
	if segment == nil {
		return nil
	}
	return &po.VideoSegmentPO{
		ID:             segment.ID,
		VideoQualityID: segment.VideoQualityID,
		SegmentIndex:   segment.SegmentIndex,
		Data:           segment.Data,
		Size:           segment.Size,
		StartTime:      segment.StartTime,
		EndTime:        segment.EndTime,
		CreatedAt:      segment.CreatedAt,
	}
}

// ToSegmentEntities 批量将切片PO转换为Entity
func (c *VideoConvertor) ToSegmentEntities(rows []*po.VideoSegmentPO) []*entity.VideoSegment {
	if rows == nil {
		return nil
	}
	entities := make([]*entity.VideoSegment, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			entities = append(entities, c.ToSegmentEntity(row))
		}
	}
	return entities
}
