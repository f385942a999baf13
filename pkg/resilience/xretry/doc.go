// Package xretry 提供基于 [avast/retry-go/v5] 的重试执行器。
//
// Retryer 由两部分组成：
//   - RetryPolicy 决定最多尝试几次、某个错误是否值得重试
//   - BackoffPolicy 决定两次尝试之间等待多久
//
// 错误可通过 NewPermanentError 标记为不可重试，Retryer 遇到后立即返回。
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewFixedBackoff(10*time.Millisecond)),
//	)
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    return os.Remove(path)
//	})
//
// xrotate 用它重试清理阶段的文件删除。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
