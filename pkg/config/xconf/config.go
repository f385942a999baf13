package xconf

import "github.com/knadh/koanf/v2"

// Format 配置格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 已加载的配置，方法并发安全
type Config interface {
	// Client 返回当前的 koanf 实例，Reload 后返回新实例
	Client() *koanf.Koanf
	// Unmarshal 将 path 下的配置解码到 target，path 为空时解码全部
	Unmarshal(path string, target any) error
	// Reload 重新读取文件，失败时保留旧配置
	Reload() error
	// Path 文件路径，NewFromBytes 创建的配置为空
	Path() string
	Format() Format
}

// Option 加载选项
type Option func(*options)

type options struct {
	delim string
	tag   string
}

// WithDelim 键分隔符，默认 "."
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 结构体标签名，默认 "koanf"
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}
