package xconf

import "errors"

var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xconf: empty config path")
	// ErrUnsupportedFormat 扩展名或格式不是 yaml/json
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")
	// ErrLoadFailed 读取文件失败
	ErrLoadFailed = errors.New("xconf: failed to load config")
	// ErrParseFailed 内容解析失败
	ErrParseFailed = errors.New("xconf: failed to parse config")
	// ErrUnmarshalFailed 解码到结构体失败
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")
	// ErrNotReloadable 配置不是从文件加载的，无法 Reload 或 Watch
	ErrNotReloadable = errors.New("xconf: config is not backed by a file")
)

// ErrWatch fsnotify 报告的监视错误
var ErrWatch = errors.New("xconf: watch error")
