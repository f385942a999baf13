package xbreaker

import (
	"errors"
	"fmt"
)

// ErrNilContext Do 的 ctx 为 nil
var ErrNilContext = errors.New("xbreaker: context cannot be nil")

// BreakerError 熔断器拒绝执行时返回的错误
type BreakerError struct {
	Err   error // ErrOpenState 或 ErrTooManyRequests
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
	}
	return e.Err.Error()
}

func (e *BreakerError) Unwrap() error { return e.Err }

// Retryable 实现 xretry.RetryableError，熔断错误不应重试
func (e *BreakerError) Retryable() bool { return false }

// IsBreakerError 判断 err 是否由熔断器拒绝产生
func IsBreakerError(err error) bool {
	var be *BreakerError
	return errors.As(err, &be)
}

// wrapBreakerError 只包装 gobreaker 自身的拒绝错误，业务错误原样返回
func wrapBreakerError(err error, name string, state State) error {
	if errors.Is(err, ErrOpenState) || errors.Is(err, ErrTooManyRequests) {
		return &BreakerError{Err: err, Name: name, State: state}
	}
	return err
}
