package vo

import "time"

// VideoProcessedEvent 管线结束后发布的事件，无论成功失败都会发出
type VideoProcessedEvent struct {
	VideoID         string    `json:"video_id"`
	UserID          string    `json:"user_id"`
	Status          string    `json:"status"`
	QualitiesReady  []string  `json:"qualities_ready"`
	QualitiesFailed []string  `json:"qualities_failed"`
	Duration        int       `json:"duration"`
	FinishedAt      time.Time `json:"finished_at"`
}
