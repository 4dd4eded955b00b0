package gateway

import (
	"context"

	"streamforge/ddd/domain/vo"
)

// Transcoder 转码能力，由外部编码器（ffmpeg子进程）实现。
// 接口化隔离具体工具，也便于测试注入假实现。
type Transcoder interface {
	// Analyze 探测源视频容器，读取分辨率/帧率/帧数等元数据。
	// 不可读的容器返回错误，分析从不部分成功。
	Analyze(ctx context.Context, inputPath string) (*vo.Analysis, error)

	// EncodeSegments 把源视频转码为指定档位的固定时长切片序列。
	// sourceDuration 为分析阶段得到的源时长（秒），用于推算末段实际时长。
	// 切片按索引升序返回，末段可短于标称时长。
	EncodeSegments(ctx context.Context, inputPath string, quality vo.Quality, sourceDuration float64) ([]vo.EncodedSegment, error)
}

// Thumbnailer 缩略图能力。按请求顺序返回各尺寸，整组成功或整组失败。
type Thumbnailer interface {
	GenerateThumbnails(ctx context.Context, inputPath string, timestamp float64, sizes []vo.ThumbnailSize) ([]vo.Thumbnail, error)
}
