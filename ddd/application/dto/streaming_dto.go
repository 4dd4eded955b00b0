package dto

import (
	"fmt"

	"streamforge/ddd/domain/entity"
)

// ManifestDto 播放清单，列出全部可用档位及其切片索引
type ManifestDto struct {
	VideoID         string               `json:"video_id"`
	Title           string               `json:"title"`
	Duration        int                  `json:"duration"`
	SegmentDuration int                  `json:"segment_duration"`
	Qualities       []ManifestQualityDto `json:"qualities"`
}

// ManifestQualityDto 清单中的单个档位
type ManifestQualityDto struct {
	Quality       string               `json:"quality"`
	Resolution    string               `json:"resolution"`
	BitrateK      int                  `json:"bitrate_k"`
	Codec         string               `json:"codec"`
	FPS           int                  `json:"fps"`
	TotalSegments int                  `json:"total_segments"`
	TotalSize     int64                `json:"total_size"`
	Segments      []ManifestSegmentDto `json:"segments"`
}

// ManifestSegmentDto 清单中的单个切片引用
type ManifestSegmentDto struct {
	Index     int     `json:"index"`
	Duration  float64 `json:"duration"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Size      int64   `json:"size"`
	URL       string  `json:"url"`
}

// NewManifestSegmentDto 由切片元数据创建清单项
func NewManifestSegmentDto(videoID, quality string, seg *entity.VideoSegment) ManifestSegmentDto {
	return ManifestSegmentDto{
		Index:     seg.SegmentIndex,
		Duration:  seg.Duration(),
		StartTime: seg.StartTime,
		EndTime:   seg.EndTime,
		Size:      seg.Size,
		URL:       fmt.Sprintf("/streaming/video/%s/segment/%s/%d", videoID, quality, seg.SegmentIndex),
	}
}

// QualityInfoDto 单个档位的详细信息
type QualityInfoDto struct {
	VideoID         string `json:"video_id"`
	Quality         string `json:"quality"`
	Resolution      string `json:"resolution"`
	BitrateK        int    `json:"bitrate_k"`
	Codec           string `json:"codec"`
	FPS             int    `json:"fps"`
	SegmentDuration int    `json:"segment_duration"`
	TotalSegments   int    `json:"total_segments"`
	TotalSize       int64  `json:"total_size"`
}

// NewQualityInfoDto 从档位实体创建DTO
func NewQualityInfoDto(q *entity.VideoQuality) *QualityInfoDto {
	if q == nil {
		return nil
	}
	return &QualityInfoDto{
		VideoID:         q.VideoID,
		Quality:         q.Quality.String(),
		Resolution:      q.Resolution,
		BitrateK:        q.BitrateK,
		Codec:           q.Codec,
		FPS:             q.FPS,
		SegmentDuration: q.SegmentDuration,
		TotalSegments:   q.TotalSegments,
		TotalSize:       q.TotalSize,
	}
}

// AutoQualityDto 自动选档响应
type AutoQualityDto struct {
	VideoID            string   `json:"video_id"`
	SelectedQuality    string   `json:"selected_quality"`
	AvailableQualities []string `json:"available_qualities"`
	BandwidthKbps      int      `json:"bandwidth_kbps,omitempty"`
	Mobile             bool     `json:"mobile"`
}

// SegmentDataDto 切片响应载体，包含完整负载与区间信息
type SegmentDataDto struct {
	Data      []byte
	TotalSize int64
	MimeType  string
	// RangeStart/RangeEnd 仅在部分内容响应时有效
	Partial    bool
	RangeStart int64
	RangeEnd   int64
}

// ThumbnailDto 缩略图响应载体
type ThumbnailDto struct {
	Data     []byte
	MimeType string
}
