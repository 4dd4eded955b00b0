package entity

import (
	"time"

	"streamforge/ddd/domain/vo"
)

// VideoQuality 某个视频实际产出的一个清晰度档位
type VideoQuality struct {
	ID              string
	VideoID         string
	Quality         vo.Quality
	Resolution      string
	BitrateK        int
	Codec           string
	FPS             int
	SegmentDuration int
	TotalSegments   int
	TotalSize       int64
	Status          vo.ProcessingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VideoSegment 某个档位的一个固定时长切片
type VideoSegment struct {
	ID             string
	VideoQualityID string
	SegmentIndex   int
	Data           []byte
	Size           int64
	StartTime      float64 // 秒
	EndTime        float64 // 秒
	CreatedAt      time.Time
}

// Duration 切片实际时长
func (s *VideoSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}
