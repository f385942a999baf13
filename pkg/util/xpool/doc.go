// Package xpool 提供泛型 worker pool。
//
// Pool 以固定数量的 worker 从有界队列中消费任务：
//   - 泛型任务类型
//   - worker 数量 [1, 65536]，队列大小 [1, 16777216]
//   - Submit 永不阻塞，队列满返回 ErrQueueFull，已关闭返回 ErrPoolStopped
//   - Close 处理完队列中的任务后返回；Shutdown(ctx) 支持超时
//   - handler panic 被恢复并交给 WithOnPanic 回调，不影响其他任务
//
// xrotate 的 PoolDispatcher 用它限制后台压缩/清理的并发度。
//
// # 注意事项
//
//   - Close/Shutdown 不可在 handler 内调用，否则会死锁
//   - panic 的任务不会重试
//   - Shutdown 超时返回后，残留 worker 仍会处理完剩余任务，可通过 Done() 等待
package xpool
