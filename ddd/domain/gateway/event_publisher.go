package gateway

import (
	"context"

	"streamforge/ddd/domain/vo"
)

// EventPublisher 处理结果事件发布
type EventPublisher interface {
	PublishVideoProcessed(ctx context.Context, event vo.VideoProcessedEvent) error
}
