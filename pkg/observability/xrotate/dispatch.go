package xrotate

import (
	"context"

	"github.com/omeyang/xroller/pkg/util/xpool"
)

// Dispatcher 调度轮转后的压缩/清理任务。
//
// 任务是尽力而为的：Roller 不等待任务完成，Close 也不会 join。
// Dispatch 不得阻塞写入路径，也不得丢弃任务。
type Dispatcher interface {
	Dispatch(task func())
}

// DispatcherFunc 函数适配器
type DispatcherFunc func(task func())

// Dispatch 调用 f(task)
func (f DispatcherFunc) Dispatch(task func()) { f(task) }

// GoDispatcher 每个任务启动一个 goroutine，默认调度器。
type GoDispatcher struct{}

// Dispatch 在新 goroutine 中执行 task
func (GoDispatcher) Dispatch(task func()) { go task() }

// PoolDispatcher 在 xpool worker pool 上执行任务，限制后台 I/O 并发。
// 队列满或 pool 已关闭时退化为独立 goroutine。
type PoolDispatcher struct {
	pool *xpool.Pool[func()]
}

// NewPoolDispatcher 创建 PoolDispatcher，workers 和 queueSize 的约束同 xpool.New。
func NewPoolDispatcher(workers, queueSize int, opts ...xpool.Option) (*PoolDispatcher, error) {
	opts = append([]xpool.Option{xpool.WithName("xrotate-pipeline")}, opts...)
	pool, err := xpool.New(workers, queueSize, func(task func()) { task() }, opts...)
	if err != nil {
		return nil, err
	}
	return &PoolDispatcher{pool: pool}, nil
}

// Dispatch 提交任务到 pool
func (d *PoolDispatcher) Dispatch(task func()) {
	// ErrQueueFull / ErrPoolStopped
	if err := d.pool.Submit(task); err != nil {
		go task()
	}
}

// Shutdown 停止接收任务并等待已提交的任务完成。
func (d *PoolDispatcher) Shutdown(ctx context.Context) error {
	return d.pool.Shutdown(ctx)
}

// Close 等价于 Shutdown(context.Background())
func (d *PoolDispatcher) Close() error {
	return d.pool.Close()
}
