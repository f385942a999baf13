package xmetrics

import "errors"

// NewOTelObserver 注册仪表失败时返回，包装 SDK 的原始错误
var (
	ErrCreateCounter   = errors.New("xmetrics: create operation counter")
	ErrCreateHistogram = errors.New("xmetrics: create duration histogram")
)
