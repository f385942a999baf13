package xrotate

import (
	"fmt"
	"time"
)

// layout 文件名中的时间戳格式
func (g Granularity) layout() string {
	switch g {
	case Minutely:
		return "2006-01-02-15-04"
	case Hourly:
		return "2006-01-02-15"
	default:
		return "2006-01-02"
	}
}

// pattern 匹配 layout 的正则片段
func (g Granularity) pattern() string {
	switch g {
	case Minutely:
		return `\d{4}-\d{2}-\d{2}-\d{2}-\d{2}`
	case Hourly:
		return `\d{4}-\d{2}-\d{2}-\d{2}`
	default:
		return `\d{4}-\d{2}-\d{2}`
	}
}

// cronExpr cron 表达式，Next(t) 恰为 t 之后的下一个粒度边界
func (g Granularity) cronExpr() string {
	switch g {
	case Minutely:
		return "* * * * *"
	case Hourly:
		return "0 * * * *"
	default:
		return "0 0 * * *"
	}
}

// nextDeadline 计算 floor(now + 1 个粒度单位)。
// 构造后的第一个周期可能不足一个完整单位。
func (p *Policy) nextDeadline(now time.Time) (time.Time, error) {
	if p.schedule == nil {
		return time.Time{}, fmt.Errorf("%w: no schedule for %s", ErrTimeComputation, p.Granularity)
	}
	next := p.schedule.Next(now.In(p.TimeZone.Location()))
	if next.IsZero() || !next.After(now) {
		return time.Time{}, fmt.Errorf("%w: no %s boundary after %s",
			ErrTimeComputation, p.Granularity, now.Format(time.RFC3339))
	}
	return next, nil
}

type tzKind uint8

const (
	tzUTC tzKind = iota
	tzLocal
	tzFixed
)

// TimeZone 轮转使用的时区：UTC、本地时区或固定偏移。零值为 UTC。
type TimeZone struct {
	kind   tzKind
	offset time.Duration
}

// UTC 返回 UTC 时区
func UTC() TimeZone { return TimeZone{kind: tzUTC} }

// Local 返回进程本地时区
func Local() TimeZone { return TimeZone{kind: tzLocal} }

// FixedOffset 返回相对 UTC 的固定偏移时区，如 8*time.Hour。
// 偏移需为整秒且在 ±24h 以内，否则构造 Roller 时返回 ErrInvalidTimeZone。
func FixedOffset(offset time.Duration) TimeZone {
	return TimeZone{kind: tzFixed, offset: offset}
}

func (z TimeZone) validate() error {
	if z.kind > tzFixed {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidTimeZone, z.kind)
	}
	if z.kind != tzFixed {
		return nil
	}
	if z.offset <= -maxOffset || z.offset >= maxOffset || z.offset%time.Second != 0 {
		return fmt.Errorf("%w: offset %s, want whole seconds within ±24h", ErrInvalidTimeZone, z.offset)
	}
	return nil
}

// Location 返回对应的 *time.Location
func (z TimeZone) Location() *time.Location {
	switch z.kind {
	case tzLocal:
		return time.Local
	case tzFixed:
		if z.offset == 0 {
			return time.UTC
		}
		return time.FixedZone(z.String(), int(z.offset/time.Second))
	default:
		return time.UTC
	}
}

// String 返回 "utc"、"local" 或 "±HH:MM" 形式
func (z TimeZone) String() string {
	switch z.kind {
	case tzLocal:
		return "local"
	case tzFixed:
		sign := '+'
		off := z.offset
		if off < 0 {
			sign = '-'
			off = -off
		}
		return fmt.Sprintf("%c%02d:%02d", sign, int(off/time.Hour), int(off%time.Hour/time.Minute))
	default:
		return "utc"
	}
}
