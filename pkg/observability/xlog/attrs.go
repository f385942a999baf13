package xlog

import (
	"log/slog"
	"time"
)

// 标准字段名
const (
	KeyError      = "error"
	KeyComponent  = "component"
	KeyOperation  = "operation"
	KeyPath       = "path"
	KeyCount      = "count"
	KeySize       = "size"
	KeyDuration   = "duration"
	KeyRotationID = "rotation_id"
)

// Err 错误属性，err 为 nil 时返回空属性（被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Component 组件名
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// Operation 操作名
func Operation(name string) slog.Attr { return slog.String(KeyOperation, name) }

// Path 文件路径
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Count 计数
func Count(n int64) slog.Attr { return slog.Int64(KeyCount, n) }

// Size 字节数
func Size(n int64) slog.Attr { return slog.Int64(KeySize, n) }

// Duration 人类可读的耗时，如 "1.5s"。需要数值时使用 slog.Int64("duration_ms", ...)。
func Duration(d time.Duration) slog.Attr { return slog.String(KeyDuration, d.String()) }

// RotationID 关联同一次轮转的日志
func RotationID(id string) slog.Attr { return slog.String(KeyRotationID, id) }
