package xretry

import (
	"context"
	"time"
)

// RetryPolicy 重试策略
//
// MaxAttempts 是 retry-go 的硬上限，ShouldRetry 在每次失败后调用，可提前终止。
type RetryPolicy interface {
	// MaxAttempts 最大尝试次数（包含首次），至少为 1
	MaxAttempts() int

	// ShouldRetry attempt 为已失败次数，从 1 开始
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// BackoffPolicy 退避策略
type BackoffPolicy interface {
	// NextDelay attempt 从 1 开始
	NextDelay(attempt int) time.Duration
}
