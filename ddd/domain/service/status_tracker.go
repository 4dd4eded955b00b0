package service

import (
	"sync"
	"time"

	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
)

// JobStatus 单个视频处理作业的进度快照。
// 这是尽力而为的进度缓存，不是持久状态；进程重启后丢失，
// 客户端此时应回退到数据库里的 processing_status。
type JobStatus struct {
	Status             string
	Progress           int
	CurrentStep        string
	QualitiesCompleted []string
	TotalQualities     int
	Error              string
	StartTime          time.Time
	EndTime            time.Time
}

// StatusUnknown 进度缓存中不存在该视频时返回的状态
const StatusUnknown = "unknown"

// StatusTracker 管线持有的进程内作业状态表。
// 同一视频同时只允许一个处理作业，Begin 即串行化点。
type StatusTracker struct {
	mu   sync.RWMutex
	jobs map[string]*JobStatus
}

// NewStatusTracker 创建状态跟踪器
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{jobs: make(map[string]*JobStatus)}
}

// Begin 登记一个新作业；该视频已有未结束作业时拒绝。
func (t *StatusTracker) Begin(videoID string, totalQualities int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[videoID]; ok && job.Status == string(vo.StatusProcessing) {
		return errno.ErrAlreadyProcessing
	}
	t.jobs[videoID] = &JobStatus{
		Status:             string(vo.StatusProcessing),
		Progress:           0,
		CurrentStep:        "Starting transcoding...",
		QualitiesCompleted: make([]string, 0, totalQualities),
		TotalQualities:     totalQualities,
		StartTime:          time.Now(),
	}
	return nil
}

// SetStep 更新当前步骤描述
func (t *StatusTracker) SetStep(videoID, step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[videoID]; ok {
		job.CurrentStep = step
	}
}

// MarkTierDone 记录一个档位完成并推进进度
func (t *StatusTracker) MarkTierDone(videoID string, quality vo.Quality) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[videoID]
	if !ok {
		return
	}
	job.QualitiesCompleted = append(job.QualitiesCompleted, quality.String())
	if job.TotalQualities > 0 {
		job.Progress = len(job.QualitiesCompleted) * 100 / job.TotalQualities
	}
}

// Complete 作业成功收尾
func (t *StatusTracker) Complete(videoID string) {
	t.finish(videoID, string(vo.StatusCompleted), "")
}

// Fail 作业失败收尾
func (t *StatusTracker) Fail(videoID string, errMsg string) {
	t.finish(videoID, string(vo.StatusFailed), errMsg)
}

func (t *StatusTracker) finish(videoID, status, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[videoID]
	if !ok {
		return
	}
	job.Status = status
	job.Error = errMsg
	job.EndTime = time.Now()
	if status == string(vo.StatusCompleted) {
		job.Progress = 100
		job.CurrentStep = "Processing complete"
	}
}

// Get 返回作业状态副本；不存在时返回 unknown。
func (t *StatusTracker) Get(videoID string) JobStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[videoID]
	if !ok {
		return JobStatus{Status: StatusUnknown}
	}
	snapshot := *job
	snapshot.QualitiesCompleted = append([]string(nil), job.QualitiesCompleted...)
	return snapshot
}

// Remove 丢弃作业记录，受理回滚时使用
func (t *StatusTracker) Remove(videoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, videoID)
}

// Sweep 清理结束时间早于TTL的作业记录，返回清理数量
func (t *StatusTracker) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, job := range t.jobs {
		if !job.EndTime.IsZero() && job.EndTime.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}
