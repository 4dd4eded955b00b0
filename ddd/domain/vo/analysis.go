package vo

import (
	"errors"
	"fmt"
)

// ErrZeroFrameRate 源视频帧率为0，无法推导时长，按不可分析处理
var ErrZeroFrameRate = errors.New("source frame rate is zero")

// Analysis 源视频分析结果
type Analysis struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int64
	Duration   float64 // 秒
	FileSize   int64
}

// NewAnalysis 由探测到的原始属性构造分析结果，时长 = 帧数 / 帧率。
func NewAnalysis(width, height int, fps float64, frameCount, fileSize int64) (*Analysis, error) {
	if fps <= 0 {
		return nil, ErrZeroFrameRate
	}
	return &Analysis{
		Width:      width,
		Height:     height,
		FPS:        fps,
		FrameCount: frameCount,
		Duration:   float64(frameCount) / fps,
		FileSize:   fileSize,
	}, nil
}

// OriginalResolution 返回 "WxH" 形式的源分辨率
func (a *Analysis) OriginalResolution() string {
	return fmt.Sprintf("%dx%d", a.Width, a.Height)
}

// OptimalQualities 源分辨率对应的目标档位集合
func (a *Analysis) OptimalQualities() []Quality {
	return OptimalQualities(a.Width, a.Height)
}
