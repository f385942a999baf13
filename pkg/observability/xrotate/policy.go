package xrotate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xroller/pkg/util/xfile"
)

// Mode 轮转方式
type Mode int

const (
	// ModeAge 按时间粒度轮转，文件名携带时间戳
	ModeAge Mode = iota
	// ModeSize 按大小轮转，历史文件使用递增数字后缀
	ModeSize
)

// String 返回 Mode 的可读名称
func (m Mode) String() string {
	switch m {
	case ModeAge:
		return "age"
	case ModeSize:
		return "size"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Granularity 按时间轮转的粒度
type Granularity int

const (
	// Minutely 每分钟轮转
	Minutely Granularity = iota + 1
	// Hourly 每小时轮转
	Hourly
	// Daily 每天轮转
	Daily
)

// String 返回粒度名称，与 Config.Rotation 取值一致
func (g Granularity) String() string {
	switch g {
	case Minutely:
		return "minutely"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

func (g Granularity) valid() bool {
	return g >= Minutely && g <= Daily
}

// Compression 压缩算法
//
// 目前只有 CompressionGzip 真正执行压缩，其余算法保留文件原样且不报错。
type Compression int

const (
	// CompressionNone 不压缩
	CompressionNone Compression = iota
	// CompressionGzip gzip（deflate）压缩，生成 <path>.gz
	CompressionGzip
	// CompressionBzip2 未实现
	CompressionBzip2
	// CompressionLZ4 未实现
	CompressionLZ4
	// CompressionZstd 未实现
	CompressionZstd
	// CompressionXZ 未实现
	CompressionXZ
	// CompressionSnappy 未实现
	CompressionSnappy
)

var compressionNames = [...]string{"none", "gzip", "bzip2", "lz4", "zstd", "xz", "snappy"}

// String 返回算法名称，与 Config.Compression 取值一致
func (c Compression) String() string {
	if c >= 0 && int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// 配置取值范围
const (
	// DefaultFileMode 默认日志文件权限
	DefaultFileMode os.FileMode = 0o644

	maxKeepFiles = 65535
	maxOffset    = 24 * time.Hour
)

// Policy 轮转策略，构造后不可变。
//
// Roller 和维护命令（Segments/Compress/Prune）共享同一份 Policy。
// 直接构造的零值 Policy 在首次使用时才校验，推荐通过 NewPolicy 获取。
type Policy struct {
	// Directory 日志目录（绝对路径）
	Directory string
	// Filename 基础文件名，必须是单一路径段
	Filename string
	// Mode 轮转方式
	Mode Mode
	// Threshold ModeSize 下的大小阈值（字节）
	Threshold int64
	// Granularity ModeAge 下的时间粒度
	Granularity Granularity
	// TimeZone 时间戳和轮转时间点使用的时区
	TimeZone TimeZone
	// Compression 历史文件压缩算法
	Compression Compression
	// MaxKeepFiles 最多保留的文件数（含当前文件），0 表示不清理
	MaxKeepFiles int
	// FileMode 新建文件的权限
	FileMode os.FileMode

	schedule cron.Schedule
	segment  *regexp.Regexp // 匹配本策略产生的全部文件
	numbered *regexp.Regexp // ModeSize 下匹配 filename.N(.gz)
}

// NewPolicy 根据选项构建并校验策略，运行期选项（WithClock 等）被忽略。
func NewPolicy(dir, filename string, opts ...Option) (Policy, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o.buildPolicy(dir, filename)
}

// normalize 校验字段并编译内部匹配规则
func (p *Policy) normalize() error {
	if p.Directory == "" {
		return ErrEmptyDirectory
	}
	if p.Filename == "" {
		return ErrEmptyFilename
	}
	full, err := xfile.SafeJoin(p.Directory, p.Filename)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidFilename, p.Filename, err)
	}
	if filepath.Base(full) != p.Filename {
		return fmt.Errorf("%w: %q must be a single path element", ErrInvalidFilename, p.Filename)
	}
	p.Directory = filepath.Dir(full)

	switch p.Mode {
	case ModeSize:
		if p.Threshold <= 0 {
			return fmt.Errorf("%w: got %d, want > 0", ErrInvalidThreshold, p.Threshold)
		}
	case ModeAge:
		if !p.Granularity.valid() {
			return fmt.Errorf("%w: got %d", ErrInvalidGranularity, int(p.Granularity))
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidRotation, int(p.Mode))
	}

	if p.MaxKeepFiles < 0 || p.MaxKeepFiles > maxKeepFiles {
		return fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxKeep, p.MaxKeepFiles, maxKeepFiles)
	}
	if p.FileMode == 0 {
		p.FileMode = DefaultFileMode
	}
	if p.FileMode&^os.FileMode(0o777) != 0 {
		return fmt.Errorf("%w: got %04o, only permission bits (0000~0777) allowed",
			ErrInvalidFileMode, p.FileMode)
	}
	if err := p.TimeZone.validate(); err != nil {
		return err
	}
	if p.Compression < CompressionNone || p.Compression > CompressionSnappy {
		return fmt.Errorf("%w: got %d", ErrInvalidCompression, int(p.Compression))
	}

	return p.compile()
}

func (p *Policy) compile() error {
	quoted := regexp.QuoteMeta(p.Filename)
	var err error
	if p.Mode == ModeSize {
		if p.segment, err = regexp.Compile(`^` + quoted + `(\.\d+)?(\.gz)?$`); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidFilename, p.Filename, err)
		}
		p.numbered = regexp.MustCompile(`^` + quoted + `\.(\d+)(\.gz)?$`)
		return nil
	}
	if p.segment, err = regexp.Compile(`^` + quoted + `\.` + p.Granularity.pattern() + `(\.gz)?$`); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidFilename, p.Filename, err)
	}
	p.schedule, err = cron.ParseStandard(p.Granularity.cronExpr())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTimeComputation, err)
	}
	return nil
}

// ready 返回可用的策略副本，未初始化时先校验
func (p Policy) ready() (Policy, error) {
	if p.segment != nil {
		return p, nil
	}
	if err := p.normalize(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// canonicalPath ModeSize 下当前写入文件的固定路径
func (p *Policy) canonicalPath() string {
	return filepath.Join(p.Directory, p.Filename)
}

// numberedPath ModeSize 下历史文件路径 filename.N
func (p *Policy) numberedPath(n int) string {
	return filepath.Join(p.Directory, fmt.Sprintf("%s.%d", p.Filename, n))
}

// stampedPath ModeAge 下以 t 所在时间段命名的文件路径
func (p *Policy) stampedPath(t time.Time) string {
	stamp := t.In(p.TimeZone.Location()).Format(p.Granularity.layout())
	return filepath.Join(p.Directory, p.Filename+"."+stamp)
}

// ActivePath 返回 now 时刻应写入的文件：ModeSize 为固定文件，ModeAge 为 now 所在时间段的文件
func (p Policy) ActivePath(now time.Time) string {
	if p.Mode == ModeSize {
		return p.canonicalPath()
	}
	return p.stampedPath(now)
}

// String 返回策略摘要，用于日志
func (p Policy) String() string {
	rotation := p.Granularity.String()
	if p.Mode == ModeSize {
		rotation = fmt.Sprintf("size(%d)", p.Threshold)
	}
	return fmt.Sprintf("%s rotation=%s tz=%s compression=%s keep=%d",
		filepath.Join(p.Directory, p.Filename), rotation, p.TimeZone, p.Compression, p.MaxKeepFiles)
}
