package xmetrics

import (
	"context"
	"strconv"
)

// Kind 观测跨度类型
type Kind int

const (
	// KindInternal 进程内操作，如轮转、压缩、清理。
	KindInternal Kind = iota
	// KindServer 服务端处理。
	KindServer
	// KindClient 客户端调用。
	KindClient
	// KindProducer 投递任务或消息。
	KindProducer
	// KindConsumer 消费任务或消息。
	KindConsumer
)

var kindNames = [...]string{"Internal", "Server", "Client", "Producer", "Consumer"}

// String 返回 Kind 的可读名称
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Status 观测结果状态
type Status string

const (
	// StatusOK 成功
	StatusOK Status = "ok"
	// StatusError 失败
	StatusError Status = "error"
)

// Attr 观测属性，Key 为空或 Value 为 nil 时被忽略
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 创建跨度的参数
type SpanOptions struct {
	// Component 组件名，如 "xrotate"
	Component string
	// Operation 操作名，同时作为 span 名称
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 跨度结束时的结果。Status 为空时由 Err 推导。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 一次观测跨度
type Span interface {
	// End 结束跨度并记录结果，重复调用只生效一次。
	End(result Result)
}

// Observer 观测接口
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 空实现
type NoopObserver struct{}

// Start 原样返回 ctx（nil 时为 Background）和 NoopSpan
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度
type NoopSpan struct{}

// End 什么也不做
func (NoopSpan) End(Result) {}

// Start 通过 observer 开始观测。
//
// 返回值保证非 nil：observer 为 nil 时返回 NoopSpan；
// 自定义 Observer 返回 nil context 或 nil Span 时分别兜底为入参 ctx 和 NoopSpan。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
