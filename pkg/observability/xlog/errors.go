package xlog

import "errors"

var (
	// ErrUnknownLevel 无法识别的级别名称
	ErrUnknownLevel = errors.New("xlog: unknown level")
	// ErrUnknownFormat 无法识别的输出格式
	ErrUnknownFormat = errors.New("xlog: unknown format")
	// ErrNilOutput 输出目标为 nil
	ErrNilOutput = errors.New("xlog: nil output")
)
