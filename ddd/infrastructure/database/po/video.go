package po

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// VideoPO 视频持久化对象
type VideoPO struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	UserID           string     `gorm:"index;size:36;not null" json:"user_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Category         string     `gorm:"size:100" json:"category"`
	Tags             StringList `gorm:"type:json" json:"tags"`
	IsPublic         bool       `gorm:"default:true" json:"is_public"`
	ProcessingStatus string     `gorm:"index;size:20;not null" json:"processing_status"`

	OriginalFilename   string `gorm:"size:500" json:"original_filename"`
	Duration           int    `gorm:"default:0" json:"duration"`
	OriginalResolution string `gorm:"size:20" json:"original_resolution"`
	OriginalSize       int64  `gorm:"default:0" json:"original_size"`
	FPS                int    `gorm:"default:0" json:"fps"`

	ThumbnailSmall    []byte `gorm:"type:mediumblob" json:"-"`
	ThumbnailMedium   []byte `gorm:"type:mediumblob" json:"-"`
	ThumbnailLarge    []byte `gorm:"type:mediumblob" json:"-"`
	ThumbnailMimeType string `gorm:"size:50" json:"thumbnail_mime_type"`

	Views     int64     `gorm:"default:0" json:"views"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (VideoPO) TableName() string {
	return "videos"
}

// VideoQualityPO 清晰度档位持久化对象
type VideoQualityPO struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	VideoID         string    `gorm:"uniqueIndex:idx_video_quality;size:36;not null" json:"video_id"`
	Quality         string    `gorm:"uniqueIndex:idx_video_quality;size:10;not null" json:"quality"`
	Resolution      string    `gorm:"size:20;not null" json:"resolution"`
	BitrateK        int       `gorm:"not null" json:"bitrate_k"`
	Codec           string    `gorm:"size:20;not null" json:"codec"`
	FPS             int       `gorm:"not null" json:"fps"`
	SegmentDuration int       `gorm:"not null" json:"segment_duration"`
	TotalSegments   int       `gorm:"not null" json:"total_segments"`
	TotalSize       int64     `gorm:"not null" json:"total_size"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (VideoQualityPO) TableName() string {
	return "video_qualities"
}

// VideoSegmentPO 切片持久化对象，二进制负载直接入库
type VideoSegmentPO struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	VideoQualityID string    `gorm:"uniqueIndex:idx_quality_segment;size:36;not null" json:"video_quality_id"`
	SegmentIndex   int       `gorm:"uniqueIndex:idx_quality_segment;not null" json:"segment_index"`
	Data           []byte    `gorm:"type:longblob;not null" json:"-"`
	Size           int64     `gorm:"not null" json:"size"`
	StartTime      float64   `gorm:"not null" json:"start_time"`
	EndTime        float64   `gorm:"not null" json:"end_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (VideoSegmentPO) TableName() string {
	return "video_segments"
}

// StringList 自定义JSON字符串数组类型
type StringList []string

// Value 实现driver.Valuer接口
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan 实现sql.Scanner接口
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}
