package xrotate

import "errors"

// 配置校验错误
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidFilename 文件名不是单一路径段（包含分隔符或 ".."）
	ErrInvalidFilename = errors.New("xrotate: invalid filename")

	// ErrEmptyDirectory 目录为空
	ErrEmptyDirectory = errors.New("xrotate: directory is required")

	// ErrInvalidThreshold 按大小轮转的阈值无效（必须 > 0）
	ErrInvalidThreshold = errors.New("xrotate: invalid size threshold")

	// ErrInvalidGranularity 按时间轮转的粒度无效
	ErrInvalidGranularity = errors.New("xrotate: invalid granularity")

	// ErrInvalidMaxKeep 保留文件数无效（必须在 1~65535 范围内）
	ErrInvalidMaxKeep = errors.New("xrotate: invalid max keep files")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid FileMode")

	// ErrInvalidTimeZone 时区无效（固定偏移必须在 ±24h 以内且为整秒）
	ErrInvalidTimeZone = errors.New("xrotate: invalid time zone")

	// ErrInvalidCompression 未知的压缩算法名称（仅 Config 解析使用）
	ErrInvalidCompression = errors.New("xrotate: invalid compression")

	// ErrInvalidRotation 未知的轮转方式名称（仅 Config 解析使用）
	ErrInvalidRotation = errors.New("xrotate: invalid rotation")
)

// 运行期错误
var (
	// ErrRotation 轮转失败（重命名或创建文件失败）。
	// 非致命：继续写入旧文件，下次写入时重试。
	ErrRotation = errors.New("xrotate: rotation failed")

	// ErrCompression 压缩失败，原文件保留
	ErrCompression = errors.New("xrotate: compression failed")

	// ErrPrune 清理旧文件失败
	ErrPrune = errors.New("xrotate: prune failed")

	// ErrTimeComputation 无法计算下一个轮转时间点
	ErrTimeComputation = errors.New("xrotate: time computation failed")

	// ErrNotDue 按时间轮转时尚未到达轮转时间点
	ErrNotDue = errors.New("xrotate: rotation not due")

	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")
)
