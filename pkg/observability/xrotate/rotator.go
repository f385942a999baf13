package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 是 Roller 对外暴露的最小写入面，xlog 通过它把日志写入滚动文件。
//
// 实现必须并发安全。Close 之后 Write/Rotate/Flush 返回 [ErrClosed]。
// 轮转失败只经 OnError 上报，Write 仅在追加本身失败时返回错误。
type Rotator interface {
	io.WriteCloser

	// Rotate 立即关闭当前段并切换到下一个段
	Rotate() error

	// Flush 将当前段 fsync 到磁盘
	Flush() error

	// Path 当前段的完整路径
	Path() string
}
