// Package xbreaker 提供基于 [sony/gobreaker/v2] 的熔断器。
//
// Breaker 在 TripPolicy 判定失败过多后进入 Open 状态，冷却 Timeout 后转为
// HalfOpen 放行探测请求，探测成功即恢复 Closed。
//
// 熔断器拒绝执行时返回 *BreakerError，它包装 ErrOpenState 或
// ErrTooManyRequests，且 Retryable() 为 false，与 xretry 组合时不会被重试。
//
// xrotate 用它在磁盘持续故障时暂停压缩。
//
// [sony/gobreaker/v2]: https://github.com/sony/gobreaker
package xbreaker
