package vo

// ProcessingStatus 视频处理状态
type ProcessingStatus string

const (
	// StatusProcessing 处理中
	StatusProcessing ProcessingStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted ProcessingStatus = "completed"
	// StatusFailed 失败
	StatusFailed ProcessingStatus = "failed"
)

// IsValid 检查状态是否有效
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s ProcessingStatus) String() string {
	return string(s)
}

// IsFinal 检查是否为最终状态
func (s ProcessingStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo 检查是否可以转换到目标状态。
// 只允许 processing -> completed 和 processing -> failed，终态不可逆。
func (s ProcessingStatus) CanTransitionTo(target ProcessingStatus) bool {
	if s != StatusProcessing {
		return false
	}
	return target == StatusCompleted || target == StatusFailed
}
