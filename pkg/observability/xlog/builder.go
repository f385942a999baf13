package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xroller/pkg/observability/xrotate"
)

// ReplaceAttrFunc 输出前改写属性，返回空 Key 的 Attr 表示移除。用于脱敏、重命名。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志构建器，Build 后不可复用
type Builder struct {
	output      io.Writer
	levelVar    *slog.LevelVar
	format      string
	addSource   bool
	replaceAttr ReplaceAttrFunc
	rotator     xrotate.Rotator
	onError     func(error)
	err         error
}

// New 默认输出到 stderr，Info 级别，text 格式
func New() *Builder {
	return &Builder{
		output:   os.Stderr,
		levelVar: new(slog.LevelVar),
		format:   "text",
	}
}

// SetOutput 设置输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	if w == nil {
		b.err = ErrNilOutput
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置初始级别
func (b *Builder) SetLevel(level Level) *Builder {
	if b.err == nil {
		b.levelVar.Set(slog.Level(level))
	}
	return b
}

// SetLevelString 按名称设置级别，见 ParseLevel
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置 text 或 json，空串为 text
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = f
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 记录调用位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	if b.err == nil {
		b.addSource = enable
	}
	return b
}

// SetReplaceAttr 设置属性改写函数
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	if b.err == nil {
		b.replaceAttr = fn
	}
	return b
}

// SetOnError 设置 Handler 写入失败时的回调。回调在写日志的 goroutine 上同步执行。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	if b.err == nil {
		b.onError = fn
	}
	return b
}

// SetRotation 输出到 dir/filename 并按 opts 轮转，cleanup 负责关闭
func (b *Builder) SetRotation(dir, filename string, opts ...xrotate.Option) *Builder {
	if b.err != nil {
		return b
	}
	r, err := xrotate.New(dir, filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	return b.setRotator(r)
}

// SetRotationConfig 同 SetRotation，参数来自配置文件
func (b *Builder) SetRotationConfig(cfg xrotate.Config, opts ...xrotate.Option) *Builder {
	if b.err != nil {
		return b
	}
	r, err := cfg.Open(opts...)
	if err != nil {
		b.err = err
		return b
	}
	return b.setRotator(r)
}

func (b *Builder) setRotator(r xrotate.Rotator) *Builder {
	if b.rotator != nil {
		// 重复设置时关闭前一个
		_ = b.rotator.Close()
	}
	b.rotator = r
	b.output = r
	return b
}

// Build 返回 Logger 和幂等的 cleanup。配置错误时已打开的轮转文件会被关闭。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		if b.rotator != nil {
			_ = b.rotator.Close()
		}
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{Level: b.levelVar, AddSource: b.addSource}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	logger := &xlogger{
		handler:   handler,
		levelVar:  b.levelVar,
		addSource: b.addSource,
		onError:   b.onError,
		errors:    new(atomic.Uint64),
		inError:   new(atomic.Bool),
	}

	rotator := b.rotator
	var once sync.Once
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
	return logger, cleanup, nil
}
