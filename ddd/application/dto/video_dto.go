package dto

import (
	"time"

	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/service"
)

// VideoDto 视频数据传输对象
type VideoDto struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Category           string    `json:"category,omitempty"`
	Tags               []string  `json:"tags"`
	IsPublic           bool      `json:"is_public"`
	ProcessingStatus   string    `json:"processing_status"`
	OriginalFilename   string    `json:"original_filename"`
	Duration           int       `json:"duration"`
	OriginalResolution string    `json:"original_resolution"`
	FPS                int       `json:"fps"`
	Views              int64     `json:"views"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewVideoDto 从实体创建DTO
func NewVideoDto(video *entity.Video) *VideoDto {
	if video == nil {
		return nil
	}
	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}
	return &VideoDto{
		ID:                 video.ID,
		UserID:             video.UserID,
		Title:              video.Title,
		Description:        video.Description,
		Category:           video.Category,
		Tags:               tags,
		IsPublic:           video.IsPublic,
		ProcessingStatus:   video.ProcessingStatus.String(),
		OriginalFilename:   video.OriginalFilename,
		Duration:           video.Duration,
		OriginalResolution: video.OriginalResolution,
		FPS:                video.FPS,
		Views:              video.Views,
		CreatedAt:          video.CreatedAt,
		UpdatedAt:          video.UpdatedAt,
	}
}

// UploadAcceptedDto 上传受理响应
type UploadAcceptedDto struct {
	VideoID          string   `json:"video_id"`
	ProcessingStatus string   `json:"processing_status"`
	TargetQualities  []string `json:"target_qualities"`
	Message          string   `json:"message"`
}

// ProcessingStatusDto 处理进度响应
type ProcessingStatusDto struct {
	VideoID            string   `json:"video_id"`
	Status             string   `json:"status"`
	Progress           int      `json:"progress"`
	CurrentStep        string   `json:"current_step,omitempty"`
	QualitiesCompleted []string `json:"qualities_completed"`
	TotalQualities     int      `json:"total_qualities"`
	Error              string   `json:"error,omitempty"`
}

// NewProcessingStatusDto 由进度快照创建DTO
func NewProcessingStatusDto(videoID string, job service.JobStatus) *ProcessingStatusDto {
	completed := job.QualitiesCompleted
	if completed == nil {
		completed = []string{}
	}
	return &ProcessingStatusDto{
		VideoID:            videoID,
		Status:             job.Status,
		Progress:           job.Progress,
		CurrentStep:        job.CurrentStep,
		QualitiesCompleted: completed,
		TotalQualities:     job.TotalQualities,
		Error:              job.Error,
	}
}
