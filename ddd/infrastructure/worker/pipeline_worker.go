package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"streamforge/ddd/domain/service"
	"streamforge/ddd/infrastructure/queue"
	"streamforge/pkg/logger"
	"streamforge/pkg/task"
)

// statusSweepInterval 进度缓存清理周期
const statusSweepInterval = time.Hour

// PipelineWorker 从上传队列取作业并驱动处理管线的后台工作器。
// 实现 task.BackgroundTask，由任务管理器统一启停。
type PipelineWorker struct {
	uploadQueue queue.UploadQueue
	pipeline    *service.PipelineService
	workerCount int
	statusTTL   time.Duration

	running bool
	cancel  context.CancelFunc
	mu      sync.Mutex
	wg      sync.WaitGroup
}

var _ task.BackgroundTask = (*PipelineWorker)(nil)

// NewPipelineWorker 创建管线工作器
func NewPipelineWorker(uploadQueue queue.UploadQueue, pipeline *service.PipelineService, workerCount int, statusTTL time.Duration) *PipelineWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	if statusTTL <= 0 {
		statusTTL = 24 * time.Hour
	}
	return &PipelineWorker{
		uploadQueue: uploadQueue,
		pipeline:    pipeline,
		workerCount: workerCount,
		statusTTL:   statusTTL,
	}
}

// Name 任务名
func (w *PipelineWorker) Name() string {
	return "pipeline-worker"
}

// Start 启动工作协程和进度缓存清理协程
func (w *PipelineWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("pipeline worker is already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	logger.Infof("starting pipeline worker with %d goroutines", w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}

	w.wg.Add(1)
	go w.statusJanitorLoop(workerCtx)

	return nil
}

// Stop 停止工作器，等待在途作业的当前步骤结束
func (w *PipelineWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false
	logger.Infof("pipeline worker stopped")
	return nil
}

// workerLoop 工作器主循环
func (w *PipelineWorker) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Debugf("pipeline worker goroutine %d started", workerID)
	defer logger.Debugf("pipeline worker goroutine %d stopped", workerID)

	for {
		job, err := w.uploadQueue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			logger.Warnf("pipeline worker %d dequeue: %v", workerID, err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		logger.Infof("pipeline worker %d processing video %s (%d tiers)", workerID, job.VideoID, len(job.Qualities))
		w.pipeline.ProcessTiers(ctx, job)
	}
}

// statusJanitorLoop 定期清理进度缓存中的过期终态记录
func (w *PipelineWorker) statusJanitorLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(statusSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := w.pipeline.Tracker().Sweep(w.statusTTL); removed > 0 {
				logger.Debugf("status janitor evicted %d finished jobs", removed)
			}
		}
	}
}
