package xretry

import (
	"context"
	"time"
)

var (
	_ RetryPolicy   = (*FixedRetryPolicy)(nil)
	_ BackoffPolicy = (*FixedBackoff)(nil)
)

// FixedRetryPolicy 固定次数重试
type FixedRetryPolicy struct {
	maxAttempts int
}

// NewFixedRetry maxAttempts 包含首次尝试，小于 1 时按 1 处理
func NewFixedRetry(maxAttempts int) *FixedRetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FixedRetryPolicy{maxAttempts: maxAttempts}
}

func (p *FixedRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry ctx 已结束、次数用尽或错误不可重试时返回 false
func (p *FixedRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	return IsRetryable(err)
}

// FixedBackoff 固定间隔
type FixedBackoff struct {
	delay time.Duration
}

// NewFixedBackoff 负数按 0 处理
func NewFixedBackoff(delay time.Duration) *FixedBackoff {
	if delay < 0 {
		delay = 0
	}
	return &FixedBackoff{delay: delay}
}

func (b *FixedBackoff) NextDelay(_ int) time.Duration {
	return b.delay
}
