package xrotate

import (
	"io"
	"sync"
	"sync/atomic"
)

var _ io.WriteCloser = (*SharedWriter)(nil)

// SharedWriter 持有 Roller 读锁的写入句柄。
//
// 多个 SharedWriter 可并发写入同一文件；轮转需要写锁，
// 会等待所有 SharedWriter 释放后才切换文件。用完必须调用 Close。
type SharedWriter struct {
	r        *Roller
	once     sync.Once
	released atomic.Bool
}

// Acquire 在写锁下完成轮转检查，然后返回持有读锁的 SharedWriter。
//
// 轮转失败同 Write，经 OnError 上报后继续使用旧文件。
// Roller 已关闭时返回的 SharedWriter 写入返回 ErrClosed。
func (r *Roller) Acquire() *SharedWriter {
	r.mu.Lock()
	if !r.closed {
		if err := r.maybeRotateLocked(); err != nil {
			r.reportError(err)
		}
	}
	r.mu.Unlock()

	r.mu.RLock()
	return &SharedWriter{r: r}
}

// Write 在读锁下追加数据，SharedWriter 已释放时返回 ErrClosed
func (w *SharedWriter) Write(p []byte) (int, error) {
	if w.released.Load() || w.r.closed {
		return 0, ErrClosed
	}
	n, err := w.r.file.Write(p)
	w.r.st.size.Add(int64(n))
	return n, err
}

// Close 释放读锁，重复调用安全
func (w *SharedWriter) Close() error {
	w.once.Do(func() {
		w.released.Store(true)
		w.r.mu.RUnlock()
	})
	return nil
}
