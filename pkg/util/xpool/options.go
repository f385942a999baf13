package xpool

import "log/slog"

// Option 定义 Pool 可选配置函数类型。
type Option func(*options)

type options struct {
	name    string
	onPanic func(error)
}

func defaultOptions() options {
	return options{
		onPanic: func(err error) {
			slog.Default().Error("xpool: worker panic recovered", slog.Any("error", err))
		},
	}
}

// WithName 设置 pool 名称，会出现在 panic 错误信息中。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithOnPanic 设置 handler panic 后的回调，err 包装 ErrTaskPanic 并带有调用栈。
// 默认写入 slog.Default()，nil 被忽略。回调在 worker goroutine 中同步执行。
func WithOnPanic(fn func(err error)) Option {
	return func(o *options) {
		if fn != nil {
			o.onPanic = fn
		}
	}
}
