package xrotate

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xroller/pkg/observability/xmetrics"
)

// Option Roller 配置选项函数
type Option func(*options)

type options struct {
	mode        Mode
	threshold   int64
	granularity Granularity
	timeZone    TimeZone
	compression Compression
	maxKeep     int
	keepSet     bool
	fileMode    os.FileMode

	onError    func(error)
	clock      clockwork.Clock
	dispatcher Dispatcher
	observer   xmetrics.Observer
	fs         fileSystem
}

// defaultOptions 默认按天轮转、UTC、不压缩、不清理
func defaultOptions() options {
	return options{
		mode:        ModeAge,
		granularity: Daily,
		timeZone:    UTC(),
		fileMode:    DefaultFileMode,
		onError:     defaultOnError,
		clock:       clockwork.NewRealClock(),
		dispatcher:  GoDispatcher{},
		observer:    xmetrics.NoopObserver{},
		fs:          osFS{},
	}
}

func (o *options) buildPolicy(dir, filename string) (Policy, error) {
	if o.keepSet && o.maxKeep < 1 {
		return Policy{}, fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxKeep, o.maxKeep, maxKeepFiles)
	}
	p := Policy{
		Directory:    dir,
		Filename:     filename,
		Mode:         o.mode,
		Threshold:    o.threshold,
		Granularity:  o.granularity,
		TimeZone:     o.timeZone,
		Compression:  o.compression,
		MaxKeepFiles: o.maxKeep,
		FileMode:     o.fileMode,
	}
	if err := p.normalize(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// WithSizeRotation 按大小轮转：当前文件累计写入达到 bytes 后，下一次写入前轮转。
func WithSizeRotation(bytes int64) Option {
	return func(o *options) {
		o.mode = ModeSize
		o.threshold = bytes
	}
}

// WithAgeRotation 按时间粒度轮转（默认 Daily）。
func WithAgeRotation(g Granularity) Option {
	return func(o *options) {
		o.mode = ModeAge
		o.granularity = g
	}
}

// WithTimeZone 设置时间戳和轮转时间点使用的时区，默认 UTC。
func WithTimeZone(tz TimeZone) Option {
	return func(o *options) {
		o.timeZone = tz
	}
}

// WithCompression 设置历史文件压缩算法。
//
// 压缩连续失败 5 次后熔断 30 秒，熔断期间关闭的历史文件保持未压缩，
// 之后的轮转也不会补压缩它们，可用 [Policy.Compress] 或 xrollctl compress 手动处理。
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMaxKeepFiles 设置最多保留的文件数（含当前文件），k 必须 >= 1。
func WithMaxKeepFiles(k int) Option {
	return func(o *options) {
		o.maxKeep = k
		o.keepSet = true
	}
}

// WithFileMode 设置新建文件的权限，0 表示使用 DefaultFileMode。
// 仅允许权限位（0000~0777），实际权限仍受进程 umask 影响。
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}

// WithOnError 设置诊断回调，接收轮转、压缩、清理中的非致命错误。
//
// 设计决策: 不使用 slog 等日志库记录内部错误，避免 Roller 作为日志输出目标时
// 产生递归写入。回调函数不得向同一 Roller 写入数据。nil 表示静默忽略。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithClock 注入时钟，测试中可使用 clockwork.NewFakeClock。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDispatcher 设置轮转后压缩/清理任务的调度器，默认 GoDispatcher。
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

// WithObserver 设置观测器，记录 rotate/compress/prune 操作。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// withFileSystem 替换文件系统实现，仅用于测试
func withFileSystem(fs fileSystem) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}
