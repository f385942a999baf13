package xrotate

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Config 可从 YAML/JSON 加载的轮转配置（配合 xconf 使用）。
//
//	directory: /var/log/app
//	filename: app.log
//	rotation: size          # size | minutely | hourly | daily
//	max_size: 100MB         # rotation=size 时必填，二进制单位，100MB = 100 MiB
//	timezone: "+08:00"      # utc | local | ±HH:MM
//	compression: gzip       # none | gzip | bzip2 | lz4 | zstd | xz | snappy
//	max_keep_files: 7       # 0 表示不清理
//	file_mode: "0644"
type Config struct {
	Directory    string `koanf:"directory"`
	Filename     string `koanf:"filename"`
	Rotation     string `koanf:"rotation"`
	MaxSize      string `koanf:"max_size"`
	TimeZone     string `koanf:"timezone"`
	Compression  string `koanf:"compression"`
	MaxKeepFiles int    `koanf:"max_keep_files"`
	FileMode     string `koanf:"file_mode"`
}

// Options 将配置转换为 Option 列表，Directory/Filename 需单独传给 New。
func (c Config) Options() ([]Option, error) {
	var opts []Option

	switch strings.ToLower(strings.TrimSpace(c.Rotation)) {
	case "", "daily":
		opts = append(opts, WithAgeRotation(Daily))
	case "hourly":
		opts = append(opts, WithAgeRotation(Hourly))
	case "minutely":
		opts = append(opts, WithAgeRotation(Minutely))
	case "size":
		if c.MaxSize == "" {
			return nil, fmt.Errorf("%w: max_size is required for size rotation", ErrInvalidThreshold)
		}
		n, err := units.RAMInBytes(c.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("%w: max_size %q: %w", ErrInvalidThreshold, c.MaxSize, err)
		}
		opts = append(opts, WithSizeRotation(n))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRotation, c.Rotation)
	}

	tz, err := ParseTimeZone(c.TimeZone)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithTimeZone(tz))

	comp, err := ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithCompression(comp))

	if c.MaxKeepFiles != 0 {
		opts = append(opts, WithMaxKeepFiles(c.MaxKeepFiles))
	}

	if c.FileMode != "" {
		mode, err := strconv.ParseUint(c.FileMode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFileMode, c.FileMode, err)
		}
		opts = append(opts, WithFileMode(os.FileMode(mode)))
	}
	return opts, nil
}

// Policy 将配置转换为校验后的 Policy
func (c Config) Policy() (Policy, error) {
	opts, err := c.Options()
	if err != nil {
		return Policy{}, err
	}
	return NewPolicy(c.Directory, c.Filename, opts...)
}

// Open 按配置创建 Roller，extra 追加在配置生成的选项之后
func (c Config) Open(extra ...Option) (*Roller, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return New(c.Directory, c.Filename, append(opts, extra...)...)
}

// ParseTimeZone 解析 "utc"、"local" 或 "±HH:MM"，空串为 UTC
func ParseTimeZone(s string) (TimeZone, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "utc", "z":
		return UTC(), nil
	case "local":
		return Local(), nil
	}

	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return TimeZone{}, fmt.Errorf("%w: %q, want utc, local or ±HH:MM", ErrInvalidTimeZone, s)
	}
	hh, ok1 := twoDigits(s[1:3])
	mm, ok2 := twoDigits(s[4:6])
	if !ok1 || !ok2 || hh > 23 || mm > 59 {
		return TimeZone{}, fmt.Errorf("%w: %q, want utc, local or ±HH:MM", ErrInvalidTimeZone, s)
	}
	offset := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if s[0] == '-' {
		offset = -offset
	}
	return FixedOffset(offset), nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// ParseCompression 解析算法名称，空串为 CompressionNone
func ParseCompression(s string) (Compression, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return CompressionNone, nil
	}
	for i, n := range compressionNames {
		if n == name {
			return Compression(i), nil
		}
	}
	return CompressionNone, fmt.Errorf("%w: %q", ErrInvalidCompression, s)
}
