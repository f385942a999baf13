package xpool

import "errors"

// 参数错误
var (
	ErrNilHandler       = errors.New("xpool: handler cannot be nil")
	ErrInvalidWorkers   = errors.New("xpool: invalid worker count")
	ErrInvalidQueueSize = errors.New("xpool: invalid queue size")
	ErrNilContext       = errors.New("xpool: nil context")
)

// 运行期错误
var (
	// ErrPoolStopped Submit 发生在 Close/Shutdown 之后
	ErrPoolStopped = errors.New("xpool: pool is stopped")

	// ErrQueueFull 队列已满，Submit 不会等待
	ErrQueueFull = errors.New("xpool: queue is full")

	// ErrTaskPanic 传给 OnPanic 的错误均包装此错误
	ErrTaskPanic = errors.New("xpool: task panicked")
)
