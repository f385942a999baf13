package xfile

import "errors"

// 路径校验错误，调用方用 errors.Is 区分
var (
	ErrEmptyPath     = errors.New("xfile: path is required")
	ErrInvalidPath   = errors.New("xfile: invalid path")
	ErrNullByte      = errors.New("xfile: path contains null byte")
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrPathEscaped SafeJoin 的结果（解析符号链接后）落在基准目录之外
	ErrPathEscaped = errors.New("xfile: path escapes base directory")
)

// ErrInvalidPerm EnsureDir 的权限缺少所有者执行位，目录将无法进入
var ErrInvalidPerm = errors.New("xfile: invalid directory permission")
