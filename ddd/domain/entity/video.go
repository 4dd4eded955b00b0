package entity

import (
	"time"

	"streamforge/ddd/domain/vo"
)

// Video 视频聚合根，对应一次上传的源视频
type Video struct {
	ID               string
	UserID           string
	Title            string
	Description      string
	Category         string
	Tags             []string
	IsPublic         bool
	ProcessingStatus vo.ProcessingStatus

	OriginalFilename   string
	Duration           int // 秒
	OriginalResolution string
	OriginalSize       int64
	FPS                int

	ThumbnailSmall    []byte
	ThumbnailMedium   []byte
	ThumbnailLarge    []byte
	ThumbnailMimeType string

	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VisibleTo 可见性检查：公开视频所有人可见，私有视频仅所有者可见
func (v *Video) VisibleTo(requesterID string) bool {
	if v.IsPublic {
		return true
	}
	return requesterID != "" && requesterID == v.UserID
}

// OwnedBy 所有权检查
func (v *Video) OwnedBy(requesterID string) bool {
	return requesterID != "" && requesterID == v.UserID
}

// ThumbnailBySize 按尺寸名取缩略图，缺失时降级到其他尺寸
func (v *Video) ThumbnailBySize(size string) []byte {
	var data []byte
	switch size {
	case "small":
		data = v.ThumbnailSmall
	case "medium":
		data = v.ThumbnailMedium
	case "large":
		data = v.ThumbnailLarge
	}
	if data == nil {
		for _, fallback := range [][]byte{v.ThumbnailMedium, v.ThumbnailLarge, v.ThumbnailSmall} {
			if fallback != nil {
				return fallback
			}
		}
	}
	return data
}
