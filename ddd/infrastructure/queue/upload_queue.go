package queue

import (
	"context"
	"sync"

	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
)

// UploadQueue 上传作业队列接口
type UploadQueue interface {
	// Enqueue 入队作业（非阻塞），队列满返回 ErrQueueFull
	Enqueue(ctx context.Context, job *vo.UploadJob) error

	// Dequeue 出队作业（阻塞直到有作业或上下文取消）
	Dequeue(ctx context.Context) (*vo.UploadJob, error)

	// Size 获取队列中待处理作业数
	Size() int

	// Close 关闭队列
	Close() error
}

// MemoryUploadQueue 基于有界channel的内存作业队列。
// 作业不落盘，进程崩溃时队列内作业丢失，对应视频停留在processing状态。
type MemoryUploadQueue struct {
	queue  chan *vo.UploadJob
	closed bool
	mu     sync.RWMutex
}

// NewMemoryUploadQueue 创建内存作业队列
func NewMemoryUploadQueue(capacity int) UploadQueue {
	if capacity <= 0 {
		capacity = 32
	}
	return &MemoryUploadQueue{
		queue: make(chan *vo.UploadJob, capacity),
	}
}

// Enqueue 入队作业，队列满立即拒绝而不是阻塞上传请求
func (q *MemoryUploadQueue) Enqueue(ctx context.Context, job *vo.UploadJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return errno.ErrQueueFull
	}
	if job == nil {
		return errno.ErrInvalidParam
	}

	select {
	case q.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errno.ErrQueueFull
	}
}

// Dequeue 出队作业
func (q *MemoryUploadQueue) Dequeue(ctx context.Context) (*vo.UploadJob, error) {
	select {
	case job, ok := <-q.queue:
		if !ok {
			return nil, context.Canceled
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size 获取队列中待处理作业数
func (q *MemoryUploadQueue) Size() int {
	return len(q.queue)
}

// Close 关闭队列
func (q *MemoryUploadQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}
