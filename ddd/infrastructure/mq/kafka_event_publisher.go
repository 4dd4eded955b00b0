package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/kafka"
	"streamforge/pkg/logger"
)

// KafkaEventPublisher 处理结果事件的Kafka发布实现
type KafkaEventPublisher struct {
	client *kafka.Client
	topic  string
}

var _ gateway.EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher 创建Kafka事件发布器
func NewKafkaEventPublisher(client *kafka.Client, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{client: client, topic: topic}
}

// PublishVideoProcessed 发布处理结束事件，以视频ID做分区键保证同视频事件有序
func (p *KafkaEventPublisher) PublishVideoProcessed(ctx context.Context, event vo.VideoProcessedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal video processed event: %w", err)
	}
	if err := p.client.Produce(ctx, p.topic, []byte(event.VideoID), payload); err != nil {
		return fmt.Errorf("produce video processed event: %w", err)
	}
	logger.Debugf("published video.processed video_id=%s status=%s", event.VideoID, event.Status)
	return nil
}

// NoopEventPublisher Kafka未启用时的空实现
type NoopEventPublisher struct{}

var _ gateway.EventPublisher = (*NoopEventPublisher)(nil)

func (NoopEventPublisher) PublishVideoProcessed(ctx context.Context, event vo.VideoProcessedEvent) error {
	return nil
}
